package hook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/logging"
)

const (
	// DefaultTimeout bounds a single hook run.
	DefaultTimeout = 5 * time.Second
	// killGrace is how long Execute waits for the output pipes to close after the
	// hook is killed.
	killGrace = 500 * time.Millisecond
)

// ErrTimeout is returned when a hook outlives its deadline.
var ErrTimeout = errors.New("hook timed out")

// Execute runs h with req on stdin.
func Execute(ctx context.Context, h *Hook, req Request, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	in, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Dir
	cmd.WaitDelay = killGrace
	isolate(cmd)
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s: %w after %v", h.Manifest.Name, ErrTimeout, timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("%s: %w, stderr: %s", h.Manifest.Name, err, s)
		}
		return nil, fmt.Errorf("%s: %w", h.Manifest.Name, err)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return &Response{Success: true}, nil
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%s: parse response: %w", h.Manifest.Name, err)
	}
	return &resp, nil
}

// Runner delivers requests to subscribed hooks on a background goroutine, so a slow
// hook never stalls the capture loop. Requests arriving while the queue is full are
// dropped.
type Runner struct {
	manager *Manager
	timeout time.Duration
	log     logrus.FieldLogger

	queue  chan Request
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner starts a Runner over manager's hooks.
func NewRunner(manager *Manager, timeout time.Duration, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		manager: manager,
		timeout: timeout,
		log:     log.WithField("component", "hooks"),
		queue:   make(chan Request, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

// Notify queues req for every hook subscribed to its event.
func (r *Runner) Notify(req Request) {
	select {
	case r.queue <- req:
	default:
		r.log.WithField("event", req.Event).Warn("hook queue full, dropping request")
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case req := <-r.queue:
			r.deliver(req)
		}
	}
}

func (r *Runner) deliver(req Request) {
	for _, h := range r.manager.Subscribers(req.Event) {
		log := r.log.WithFields(logrus.Fields{"hook": h.Manifest.Name, "event": req.Event})

		resp, err := Execute(r.ctx, h, req, r.timeout)
		switch {
		case err != nil:
			log.WithError(err).Warn("hook failed")
		case !resp.Success:
			log.WithField("reason", resp.Error).Warn("hook reported failure")
		default:
			log.Debug("hook ran")
		}
	}
}

// Close stops the runner, abandoning queued requests and killing a running hook.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}
