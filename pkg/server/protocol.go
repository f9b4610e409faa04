package server

import (
	"lingoscope/pkg/interp"
	"lingoscope/pkg/render"
	"lingoscope/pkg/session"
)

// Request is one client message.
type Request struct {
	Op        string `json:"op"`
	Container int    `json:"container,omitempty"`
	Handler   string `json:"handler,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Dot       *bool  `json:"dot,omitempty"`
	Offset    uint32 `json:"offset,omitempty"`
	ID        int    `json:"id,omitempty"`
	Enabled   bool   `json:"enabled,omitempty"`
	PC        uint32 `json:"pc,omitempty"`
}

func (r Request) ref() interp.HandlerRef {
	return interp.HandlerRef{ContainerID: r.Container, Name: r.Handler}
}

// Response answers a request, or notifies every client when Op is "paused"
// or "resumed".
type Response struct {
	Op          string              `json:"op"`
	Events      []render.Event      `json:"events,omitempty"`
	Text        string              `json:"text,omitempty"`
	Breakpoints []session.Row       `json:"breakpoints,omitempty"`
	Handlers    []interp.HandlerRef `json:"handlers,omitempty"`
	Frame       *interp.Frame       `json:"frame,omitempty"`
	ID          int                 `json:"id,omitempty"`
	Set         bool                `json:"set,omitempty"`
	Error       string              `json:"error,omitempty"`
}
