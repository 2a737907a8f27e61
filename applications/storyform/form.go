// Package storyform holds the state of one story submission form and the
// transitions the UI dispatches into it: picking or dropping a file, editing
// the contact fields and submitting to the relay.
package storyform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ToastTTL is how long a submit outcome stays on screen.
const ToastTTL = 3500 * time.Millisecond

const (
	MsgFileType       = "Only PDF, DOC, or DOCX files are allowed."
	MsgFileTooLarge   = "File too large. Max size is 10 MB."
	MsgAttachFile     = "Please attach a file before submitting."
	MsgSubmitted      = "Submitted successfully!"
	MsgSubmitFailed   = "Submission failed. Please try again."
	MsgNetworkError   = "Network error. Please check your connection."
	msgNoFileSelected = "No file selected"
)

// ErrSubmitInFlight is returned by Submit while a previous submission has not
// finished; it stands for the disabled submit button.
var ErrSubmitInFlight = errors.New("submission already in progress")

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

type Toast struct {
	Kind    ToastKind
	Message string
}

func errorToast(msg string) Toast {
	return Toast{Kind: ToastError, Message: msg}
}

// Field names as they appear on the form inputs.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldMobile    = "mobile"
)

type Fields struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
}

// State is a snapshot of the form.
type State struct {
	File       *File
	Fields     Fields
	DragActive bool
	Submitting bool
	Toast      *Toast
}

// Scheduler runs f once after d. It mirrors time.AfterFunc.
type Scheduler func(d time.Duration, f func())

type Option func(*Form)

func WithLogger(logger log.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

func WithScheduler(s Scheduler) Option {
	return func(f *Form) {
		f.schedule = s
	}
}

// Form is one instance of the submission form. Its methods are safe to call
// from the toast timer and the UI dispatcher at the same time.
type Form struct {
	mu       sync.Mutex
	state    State
	relay    RelayClient
	logger   log.Logger
	schedule Scheduler
}

func New(relay RelayClient, opts ...Option) *Form {
	f := &Form{
		relay:  relay,
		logger: log.NewNopLogger(),
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.state
	if s.File != nil {
		file := *s.File
		s.File = &file
	}
	if s.Toast != nil {
		toast := *s.Toast
		s.Toast = &toast
	}
	return s
}

// SelectFile validates a picked file and holds it in place of any previous
// one. A rejected file leaves the held file untouched and returns the error
// toast.
func (f *Form) SelectFile(file File) *Toast {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := Validate(file); err != nil {
		toast := errorToast(MsgFileType)
		if errors.Is(err, ErrFileTooLarge) {
			toast = errorToast(MsgFileTooLarge)
		}
		f.state.Toast = &toast
		return &toast
	}

	f.state.File = &file
	return nil
}

func (f *Form) DragOver() {
	f.mu.Lock()
	f.state.DragActive = true
	f.mu.Unlock()
}

func (f *Form) DragLeave() {
	f.mu.Lock()
	f.state.DragActive = false
	f.mu.Unlock()
}

// Drop ends the drag and selects the first dropped file, if any.
func (f *Form) Drop(files ...File) *Toast {
	f.DragLeave()
	if len(files) == 0 {
		return nil
	}
	return f.SelectFile(files[0])
}

func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case FieldFirstName:
		f.state.Fields.FirstName = value
	case FieldLastName:
		f.state.Fields.LastName = value
	case FieldEmail:
		f.state.Fields.Email = value
	case FieldMobile:
		f.state.Fields.Mobile = value
	default:
		return fmt.Errorf("unknown form field %q", name)
	}
	return nil
}

func (f *Form) ClearToast() {
	f.mu.Lock()
	f.state.Toast = nil
	f.mu.Unlock()
}

// Summary describes the held file the way the uploader shows it.
func (f *Form) Summary() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.File == nil {
		return msgNoFileSelected
	}
	return fmt.Sprintf("%s • %s", f.state.File.Name, fileSize(f.state.File.Size))
}

// fileSize renders whole KB below 1024 KB and MB with two decimals above.
// Halves round away from zero.
func fileSize(size int64) string {
	kb := float64(size) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.0f KB", math.Round(kb))
	}
	return fmt.Sprintf("%.2f MB", math.Round(kb/1024*100)/100)
}

// Submit encodes the held file, posts it with the contact fields to the relay
// and records the outcome as a toast that is cleared after ToastTTL. Only the
// success path resets the form.
func (f *Form) Submit(ctx context.Context) (Toast, error) {
	f.mu.Lock()
	if f.state.Submitting {
		f.mu.Unlock()
		return Toast{}, ErrSubmitInFlight
	}
	if f.state.File == nil {
		toast := errorToast(MsgAttachFile)
		f.state.Toast = &toast
		f.mu.Unlock()
		return toast, nil
	}
	f.state.Submitting = true
	file := *f.state.File
	fields := f.state.Fields
	f.mu.Unlock()

	toast, sent := f.send(ctx, file, fields)

	f.mu.Lock()
	if sent {
		f.state.File = nil
		f.state.Fields = Fields{}
	}
	f.state.Submitting = false
	f.state.Toast = &toast
	f.mu.Unlock()

	f.schedule(ToastTTL, f.ClearToast)

	return toast, nil
}

func (f *Form) send(ctx context.Context, file File, fields Fields) (Toast, bool) {
	content, err := encodeFile(file)
	if err != nil {
		level.Error(f.logger).Log("msg", "can't encode file", "file", file.Name, "err", err)
		return errorToast(MsgNetworkError), false
	}

	resp, err := f.relay.Send(ctx, Payload{
		FirstName:   fields.FirstName,
		LastName:    fields.LastName,
		Email:       fields.Email,
		Mobile:      fields.Mobile,
		FileName:    file.Name,
		FileContent: content,
	})
	if err != nil {
		level.Error(f.logger).Log("msg", "submission failed", "file", file.Name, "err", err)
		return errorToast(MsgNetworkError), false
	}

	if !resp.OK() {
		level.Warn(f.logger).Log("msg", "relay rejected submission", "status", resp.StatusCode)
		msg := resp.Body
		if msg == "" {
			msg = MsgSubmitFailed
		}
		return errorToast(msg), false
	}

	level.Info(f.logger).Log("msg", "submission sent",
		"file", file.Name,
		"size", humanize.IBytes(uint64(file.Size)),
	)
	return Toast{Kind: ToastSuccess, Message: MsgSubmitted}, true
}
