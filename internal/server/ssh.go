package server

import (
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"

	"glyphstack/internal/assets"
	"glyphstack/internal/render"
	"glyphstack/internal/scene"
	"glyphstack/internal/sprite"
	"glyphstack/internal/stack"
)

// Action is a viewer key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionFaster
	ActionSlower
	ActionToggleLayer
)

// InputEvent is an action plus the layer digit for ActionToggleLayer.
type InputEvent struct {
	Action Action
	Layer  stack.LayerID
}

const (
	inputChanSize = 64
	frameStepMS   = 10
	minFrameMS    = 10
)

// SSHServer serves a sheet's scene to SSH clients. Every session runs
// its own renderer on its own goroutine; only the compiled sprites are
// shared, and they are never written.
type SSHServer struct {
	addr    string
	hostKey string
	sheet   *assets.Sheet
	sprites map[string]*sprite.Sprite
	bg      sprite.Color
}

// NewSSHServer validates and compiles the sheet once for all sessions.
func NewSSHServer(addr, hostKey string, sh *assets.Sheet) (*SSHServer, error) {
	sprites, err := sh.Prepare()
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sh.Name, err)
	}
	bg, err := sh.BackgroundColor()
	if err != nil {
		return nil, err
	}
	return &SSHServer{
		addr:    addr,
		hostKey: hostKey,
		sheet:   sh,
		sprites: sprites,
		bg:      bg,
	}, nil
}

// Start begins listening for SSH connections.
func (s *SSHServer) Start() error {
	server := &ssh.Server{
		Addr: s.addr,
		Handler: func(sess ssh.Session) {
			s.handleSession(sess)
		},
	}

	if err := server.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}

	log.Printf("SSH server listening on %s", s.addr)
	return server.ListenAndServe()
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	username := sess.User()
	if username == "" {
		username = "Anonymous"
	}
	log.Printf("Viewer connected: %s (%s)", username, sess.RemoteAddr())
	defer log.Printf("Viewer disconnected: %s", username)

	display := render.NewANSIDisplay(sess, render.WithGlyph(s.sheet.Renderer.Glyph))
	fitted := *s.sheet
	fitted.Renderer.Width, fitted.Renderer.Height = scene.Fit(
		s.sheet.Renderer.Width, s.sheet.Renderer.Height,
		ptyReq.Window.Width, ptyReq.Window.Height, display.Scale())
	w, h := fitted.Renderer.Width, fitted.Renderer.Height
	if w <= 0 || h <= 0 {
		fmt.Fprintln(sess, "Error: terminal too small")
		return
	}

	sc, err := scene.New(&fitted, s.sprites)
	if err != nil {
		fmt.Fprintf(sess, "Error: %v\n", err)
		return
	}
	renderer := render.NewRenderer(display, w, h, s.bg)
	if s.sheet.Renderer.FrameMS > 0 {
		renderer.SetFrameRate(s.sheet.Renderer.FrameMS)
	}
	if err := sc.Setup(renderer.Layers()); err != nil {
		fmt.Fprintf(sess, "Error: %v\n", err)
		return
	}

	if err := display.Setup(); err != nil {
		return
	}
	defer display.Teardown()

	inputCh := make(chan InputEvent, inputChanSize)

	// Goroutine: read input
	go func() {
		defer close(inputCh)
		buf := make([]byte, 64)
		for {
			n, err := sess.Read(buf)
			if err != nil {
				return
			}
			for _, ev := range parseInput(buf[:n]) {
				select {
				case inputCh <- ev:
				default:
				}
				if ev.Action == ActionQuit {
					return
				}
			}
		}
	}()

	// The framebuffer is never resized; drain resizes so the session
	// does not stall on them.
	go func() {
		for range winCh {
		}
	}()

	err = renderer.Run(0, func(ls *stack.Layerstack, frame int) error {
		if stop := applyInput(renderer, inputCh); stop {
			return render.ErrStop
		}
		return sc.Frame(ls, frame)
	})
	if err != nil && !errors.Is(err, render.ErrStop) {
		log.Printf("Session %s ended: %v", username, err)
	}
}

// applyInput drains pending input between frames. It reports true when
// the viewer quit or the input stream closed.
func applyInput(r *render.Renderer, inputCh <-chan InputEvent) bool {
	for {
		select {
		case ev, ok := <-inputCh:
			if !ok {
				return true
			}
			switch ev.Action {
			case ActionQuit:
				return true
			case ActionFaster:
				r.SetFrameRate(max(int(r.FrameInterval().Milliseconds())-frameStepMS, minFrameMS))
			case ActionSlower:
				r.SetFrameRate(int(r.FrameInterval().Milliseconds()) + frameStepMS)
			case ActionToggleLayer:
				ls := r.Layers()
				if visible, ok := ls.Visible(ev.Layer); ok {
					_ = ls.SetVisibility(ev.Layer, !visible)
				}
			}
		default:
			return false
		}
	}
}

// parseInput converts raw bytes into viewer actions.
// Handles Q, Ctrl-C, +/- for frame pacing and digits for layer toggles.
func parseInput(data []byte) []InputEvent {
	var events []InputEvent
	i := 0
	for i < len(data) {
		// Skip escape sequences (arrow keys and friends)
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' {
			i += 3
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		switch {
		case r == 'q' || r == 'Q' || r == 3: // 3 = Ctrl-C
			events = append(events, InputEvent{Action: ActionQuit})
		case r == '+' || r == '=':
			events = append(events, InputEvent{Action: ActionFaster})
		case r == '-' || r == '_':
			events = append(events, InputEvent{Action: ActionSlower})
		case r >= '0' && r <= '9':
			events = append(events, InputEvent{Action: ActionToggleLayer, Layer: stack.LayerID(r - '0')})
		}
		i += size
	}
	return events
}
