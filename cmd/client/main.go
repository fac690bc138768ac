// Command client is an interactive terminal client for the cafe server.
// Server replies are printed as they arrive; stdin lines are sent as-is.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

const namePrompt = "Enter your name:\n"

const menu = `Commands:
  order N tea [and N coffee]
  order status
  collect
  exit
`

func main() {
	addr := flag.String("addr", "localhost:12345", "cafe server address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run relays in to the server and server output to out until the server
// closes the session or ctx is done.
func run(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	out = &lockedWriter{w: out}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	// The stdin pump may stay blocked in Scan after the server hangs up;
	// the process exits right after run returns. The first line is the
	// customer name; the menu is shown before every command after it.
	go func() {
		sc := bufio.NewScanner(in)
		fmt.Fprint(out, namePrompt)
		for sc.Scan() {
			line := sc.Text()
			if _, err := io.WriteString(conn, line+"\n"); err != nil {
				return
			}
			if strings.EqualFold(strings.TrimSpace(line), "exit") {
				return
			}
			fmt.Fprint(out, menu)
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
	}()

	if _, err := io.Copy(out, conn); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("read: %w", err)
	}
	return nil
}

// lockedWriter serializes the server relay and the prompts.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
