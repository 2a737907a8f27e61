package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/storyflux/storyflux/applications/storyform"
)

// exitCode is a process termination code.
type exitCode int

const (
	exitSuccess exitCode = 0
	exitFailure exitCode = 1
)

var (
	// version is the service version from git tag.
	version = ""
)

func main() {
	os.Exit(int(gracefulMain()))
}

// gracefulMain drives one form instance from the command line: fill the
// fields, pick the file, submit, print the toast.
// nolint
func gracefulMain() exitCode {
	var logger log.Logger
	{
		logger = log.NewJSONLogger(log.NewSyncWriter(os.Stderr))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	relayURL := fs.String("relay", "http://localhost:8002/submit", "relay submit endpoint")
	filePath := fs.String("file", "", "path to the story document (PDF, DOC or DOCX)")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	email := fs.String("email", "", "email address")
	mobile := fs.String("mobile", "", "mobile number")
	v := fs.Bool("v", false, "Show version")

	err := fs.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		return exitSuccess
	}
	if err != nil {
		level.Error(logger).Log("msg", "parsing cli flags failed", "err", err)
		return exitFailure
	}

	if *v {
		if version == "" {
			level.Error(logger).Log("msg", "version not set")
		} else {
			level.Info(logger).Log("version", version)
		}

		return exitSuccess
	}

	defer monitorPanic(logger)

	client, err := storyform.NewHTTPRelayClient(*relayURL)
	if err != nil {
		level.Error(logger).Log("msg", "cannot create relay client", "err", err)
		return exitFailure
	}

	form := storyform.New(client, storyform.WithLogger(logger))

	fields := map[string]string{
		storyform.FieldFirstName: *firstName,
		storyform.FieldLastName:  *lastName,
		storyform.FieldEmail:     *email,
		storyform.FieldMobile:    *mobile,
	}
	for name, value := range fields {
		if err = form.SetField(name, value); err != nil {
			level.Error(logger).Log("msg", "cannot set field", "field", name, "err", err)
			return exitFailure
		}
	}

	if *filePath != "" {
		file, err := storyform.OpenFile(*filePath)
		if err != nil {
			level.Error(logger).Log("msg", "cannot open file", "path", *filePath, "err", err)
			return exitFailure
		}
		if toast := form.SelectFile(file); toast != nil {
			fmt.Println(toast.Message)
			return exitFailure
		}
	}
	fmt.Println(form.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	toast, err := form.Submit(ctx)
	if err != nil {
		level.Error(logger).Log("msg", "submit failed", "err", err)
		return exitFailure
	}

	fmt.Println(toast.Message)
	if toast.Kind != storyform.ToastSuccess {
		return exitFailure
	}

	return exitSuccess
}

// monitorPanic monitors panics and reports them somewhere (e.g. logs, ...).
func monitorPanic(logger log.Logger) {
	if rec := recover(); rec != nil {
		err := fmt.Sprintf("panic: %v \n stack trace: %s", rec, debug.Stack())
		level.Error(logger).Log("err", err)
		panic(err)
	}
}
