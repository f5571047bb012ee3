package main

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"

	"codefusion/internal/render"
	"codefusion/internal/workbench"
)

// dispatchError reports a failed dispatch with the status line the user saw
func dispatchError(st workbench.State, err error) error {
	var transport *workbench.TransportError
	switch {
	case errors.Is(err, workbench.ErrEmptyInput):
		return errors.New(st.Status.Text)
	case errors.As(err, &transport):
		return fmt.Errorf("%s (%v)", st.Status.Text, transport.Err)
	default:
		return errors.New(st.Status.Text)
	}
}

func writeHTMLDocument(path, title, body string, r *render.Renderer) error {
	var css bytes.Buffer
	if err := r.StyleCSS(&css); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&doc, "<title>%s</title>\n<style>\n%s</style>\n</head>\n<body>\n", html.EscapeString(title), css.String())
	doc.WriteString(body)
	doc.WriteString("\n</body>\n</html>\n")

	if err := os.WriteFile(path, doc.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
