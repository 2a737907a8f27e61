package storyform

import (
	"encoding/base64"
	"fmt"
	"io"
)

// Encode reads r to the end and returns its bytes in standard base64.
func Encode(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("can't read file content: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func encodeFile(f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("can't open file: %w", err)
	}
	defer rc.Close()

	return Encode(rc)
}
