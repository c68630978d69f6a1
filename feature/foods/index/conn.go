package index

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrConnClosed is returned by Send on a closed connection.
var ErrConnClosed = errors.New("worker connection closed")

// Conn carries encoded messages between the gateway and the worker.
// Send may be called from several goroutines; Receive from one.
// Receive returns io.EOF once the peer or the connection is closed.
type Conn interface {
	Send(ctx context.Context, msg []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// pipeEnd is one side of an in-process connection.
type pipeEnd struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

// Pipe returns the two ends of an in-process connection. Messages are copied
// on send so neither side can observe the other's buffers. Closing either end
// closes both.
func Pipe() (gatewaySide, workerSide Conn) {
	toWorker := make(chan []byte, 64)
	toGateway := make(chan []byte, 64)
	done := make(chan struct{})
	once := &sync.Once{}
	return &pipeEnd{in: toGateway, out: toWorker, done: done, once: once},
		&pipeEnd{in: toWorker, out: toGateway, done: done, once: once}
}

func (p *pipeEnd) Send(ctx context.Context, msg []byte) error {
	buf := append([]byte(nil), msg...)
	select {
	case <-p.done:
		return ErrConnClosed
	default:
	}
	select {
	case p.out <- buf:
		return nil
	case <-p.done:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	default:
	}
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

// maxMessageSize bounds one newline-delimited message.
const maxMessageSize = 64 << 20

// StreamConn speaks newline-delimited messages over a reader and a writer.
// Receive blocks on the reader and ignores ctx; closing the connection unblocks it.
type StreamConn struct {
	scanner *bufio.Scanner
	mu      sync.Mutex
	w       io.Writer
	closers []io.Closer
	once    sync.Once
	closed  chan struct{}
}

// NewStreamConn wraps r and w. closers run on Close.
func NewStreamConn(r io.Reader, w io.Writer, closers ...io.Closer) *StreamConn {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	return &StreamConn{scanner: scanner, w: w, closers: closers, closed: make(chan struct{})}
}

// StdioConn is the worker side of a process connection.
func StdioConn() *StreamConn {
	return NewStreamConn(os.Stdin, os.Stdout)
}

func (s *StreamConn) Send(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.closed:
		return ErrConnClosed
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	line := make([]byte, 0, len(msg)+1)
	line = append(append(line, msg...), '\n')
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("write worker message: %w", err)
	}
	return nil
}

func (s *StreamConn) Receive(_ context.Context) ([]byte, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			select {
			case <-s.closed:
				return nil, io.EOF
			default:
			}
			return nil, fmt.Errorf("read worker message: %w", err)
		}
		return nil, io.EOF
	}
	return append([]byte(nil), s.scanner.Bytes()...), nil
}

func (s *StreamConn) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		for _, c := range s.closers {
			err = errors.Join(err, c.Close())
		}
	})
	return err
}

// ProcessConn runs the worker as a child process and talks to it over its
// stdin and stdout. The child's stderr is passed through.
type ProcessConn struct {
	*StreamConn
	cmd  *exec.Cmd
	stop sync.Once
}

// StartProcess launches binary with args and connects to it.
func StartProcess(binary string, args ...string) (*ProcessConn, error) {
	cmd := exec.Command(binary, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", binary, err)
	}

	return &ProcessConn{
		StreamConn: NewStreamConn(stdout, stdin, stdin),
		cmd:        cmd,
	}, nil
}

// Close closes the worker's stdin and waits briefly for it to exit before killing it.
func (p *ProcessConn) Close() error {
	err := p.StreamConn.Close()
	p.stop.Do(func() {
		wait := make(chan error, 1)
		go func() { wait <- p.cmd.Wait() }()
		select {
		case <-wait:
		case <-time.After(5 * time.Second):
			_ = p.cmd.Process.Kill()
			<-wait
		}
	})
	return err
}
