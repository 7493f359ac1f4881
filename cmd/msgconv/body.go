package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-msg/internal/rtf"
	"github.com/robert-malhotra/go-msg/msg"
)

func bodyFlags(fs *pflag.FlagSet) {
	fs.Bool("html", false, "prefer the HTML body")
}

func runBody(_ context.Context, e *env, fs *pflag.FlagSet) error {
	path, err := single(fs)
	if err != nil {
		return err
	}
	html, _ := fs.GetBool("html")

	f, err := msg.Open(path, e.opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	body, err := bestBody(f.Message(), html)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, body)
	return err
}

// bestBody picks the preferred stored body, rendering the compressed RTF
// body when the preferred form is missing.
func bestBody(m *msg.Message, html bool) (string, error) {
	if html && m.BodyHTML != "" {
		return m.BodyHTML, nil
	}
	if !html && m.BodyText != "" {
		return m.BodyText, nil
	}
	if len(m.BodyRTF) > 0 {
		doc, err := msg.DecompressRTF(m.BodyRTF)
		if err != nil {
			return "", err
		}
		if html {
			return rtf.Renderer{}.HTML(doc)
		}
		return rtf.Renderer{}.PlainText(doc)
	}
	if m.BodyText != "" {
		return m.BodyText, nil
	}
	if m.BodyHTML != "" {
		return m.BodyHTML, nil
	}
	return "", msg.ErrNoBodyContent
}
