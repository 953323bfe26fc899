// Package editsvc talks to the generative image service that performs
// retouch, filter and adjustment edits. Every call returns exactly one image or
// a typed failure.
package editsvc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// Image is an encoded image payload.
type Image struct {
	Data     []byte
	MIMEType string
}

// Service performs edits on whole-image payloads.
type Service interface {
	// EditAt performs a localized edit around a native pixel position.
	EditAt(ctx context.Context, img Image, instruction string, at image.Point) (Image, error)
	// ApplyFilter applies a stylistic transform to the whole image.
	ApplyFilter(ctx context.Context, img Image, instruction string) (Image, error)
	// ApplyAdjustment applies a photometric transform to the whole image.
	ApplyAdjustment(ctx context.Context, img Image, instruction string) (Image, error)
}

// ErrNotConfigured is returned when no credentials are available.
var ErrNotConfigured = errors.New("edit service is not configured")

// BlockedError reports a request refused by the service's policy.
type BlockedError struct {
	Reason  string
	Message string
}

func (e *BlockedError) Error() string {
	msg := fmt.Sprintf("request was blocked: %s", e.Reason)
	if strings.TrimSpace(e.Message) != "" {
		msg += ": " + e.Message
	}
	return msg
}

// NoImageError reports a completed call that did not produce an image.
// Feedback holds any text the model returned instead.
type NoImageError struct {
	Operation string
	Feedback  string
}

func (e *NoImageError) Error() string {
	if strings.TrimSpace(e.Feedback) != "" {
		return fmt.Sprintf("no image returned for %s; model said %q", e.Operation, e.Feedback)
	}
	return fmt.Sprintf("no image returned for %s; try rephrasing the instruction", e.Operation)
}

// UnexpectedStopError reports a call that terminated abnormally.
type UnexpectedStopError struct {
	Operation string
	Reason    string
	Message   string
}

func (e *UnexpectedStopError) Error() string {
	msg := fmt.Sprintf("%s stopped unexpectedly: %s", e.Operation, e.Reason)
	if strings.TrimSpace(e.Message) != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Funcs adapts plain functions to Service. Nil fields fail with
// ErrNotConfigured.
type Funcs struct {
	EditAtFunc          func(ctx context.Context, img Image, instruction string, at image.Point) (Image, error)
	ApplyFilterFunc     func(ctx context.Context, img Image, instruction string) (Image, error)
	ApplyAdjustmentFunc func(ctx context.Context, img Image, instruction string) (Image, error)
}

func (f Funcs) EditAt(ctx context.Context, img Image, instruction string, at image.Point) (Image, error) {
	if f.EditAtFunc == nil {
		return Image{}, ErrNotConfigured
	}
	return f.EditAtFunc(ctx, img, instruction, at)
}

func (f Funcs) ApplyFilter(ctx context.Context, img Image, instruction string) (Image, error) {
	if f.ApplyFilterFunc == nil {
		return Image{}, ErrNotConfigured
	}
	return f.ApplyFilterFunc(ctx, img, instruction)
}

func (f Funcs) ApplyAdjustment(ctx context.Context, img Image, instruction string) (Image, error) {
	if f.ApplyAdjustmentFunc == nil {
		return Image{}, ErrNotConfigured
	}
	return f.ApplyAdjustmentFunc(ctx, img, instruction)
}
