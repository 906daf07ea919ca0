package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/recera/vexc/cmd/vexc/internal/config"
	"github.com/recera/vexc/cmd/vexc/internal/ui"
	"github.com/recera/vexc/internal/orderedset"
)

func newWatchCommand() *cobra.Command {
	var (
		serve   bool
		host    string
		port    int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directories...]",
		Short: "Recompile templates whenever they change",
		Long: `Watch template directories and recompile changed templates. With --serve,
compile results are broadcast as JSON messages to WebSocket clients on /ws.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if host != "" {
				cfg.Watch.Host = host
			}
			if port != 0 {
				cfg.Watch.Port = port
			}

			b, err := newBuilder(cfg, !noCache)
			if err != nil {
				return err
			}
			defer b.Close()

			if len(args) == 0 {
				args = cfg.Include
			}

			w, err := newWatcher(b, cfg.DebounceInterval())
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if serve {
				w.hub = newHub()
				addr := net.JoinHostPort(cfg.Watch.Host, strconv.Itoa(cfg.Watch.Port))
				srv := &http.Server{Addr: addr, Handler: w.hub.routes()}
				go func() {
					log.Printf("🔌 Serving compile events on ws://%s/ws", addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Printf("❌ Event server: %v", err)
						stop()
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
			}

			return w.Run(ctx, args)
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "Broadcast compile events over WebSocket")
	cmd.Flags().StringVar(&host, "host", "", "Event server host (overrides vexc.yaml)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Event server port (overrides vexc.yaml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the compile cache")

	return cmd
}

// watcher recompiles templates in response to file system events
type watcher struct {
	b        *builder
	fsw      *fsnotify.Watcher
	debounce time.Duration
	hub      *hub // nil unless serving events
}

func newWatcher(b *builder, debounce time.Duration) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &watcher{b: b, fsw: fsw, debounce: debounce}, nil
}

// Close stops watching
func (w *watcher) Close() error {
	return w.fsw.Close()
}

// Run compiles everything under roots once, then recompiles on change
// until ctx is done.
func (w *watcher) Run(ctx context.Context, roots []string) error {
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			return err
		}
	}

	files, err := w.b.collect(roots)
	if err != nil {
		return err
	}
	for _, file := range files {
		w.compile(file)
	}
	log.Printf("👀 Watching %d templates for changes...", len(files))

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pending []fsnotify.Event
	for {
		select {
		case <-ctx.Done():
			log.Println("👋 Stopped watching")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			pending = append(pending, event)
			debounce.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			events := pending
			pending = nil
			w.handle(events)
		}
	}
}

// addTree watches dir and its subdirectories
func (w *watcher) addTree(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(dir))
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.b.skipDir(path, d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// handle applies one debounced batch. Each path is processed once, in the
// order it first changed, according to whether it still exists.
func (w *watcher) handle(events []fsnotify.Event) {
	paths := orderedset.New[string]()
	for _, event := range events {
		paths.Add(filepath.Clean(event.Name))
	}

	for _, path := range paths.Items() {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			if !w.b.skipDir(path, filepath.Base(path)) {
				if err := w.addTree(path); err != nil {
					log.Printf("⚠️  Failed to watch %s: %v", path, err)
				}
				files, _ := w.b.collect([]string{path})
				for _, file := range files {
					w.compile(file)
				}
			}
		case err == nil:
			if w.b.isTemplate(path) {
				w.compile(path)
			}
		case os.IsNotExist(err):
			if w.b.isTemplate(path) {
				w.removed(path)
			}
		}
	}
}

func (w *watcher) compile(path string) {
	result, err := w.b.build(path)
	if err != nil {
		fmt.Println(ui.Failure("%v", err))
		w.notify(message{Type: "ERROR", File: path, Error: err.Error()})
		return
	}
	if result.Unchanged {
		return
	}
	fmt.Println(ui.Success("%s → %s", result.Source, result.Output))
	w.notify(message{
		Type:    "COMPILED",
		File:    result.Source,
		Output:  result.Output,
		Code:    result.Code,
		Helpers: result.Helpers,
		Cached:  result.Cached,
	})
}

func (w *watcher) removed(path string) {
	if err := w.b.remove(path); err != nil {
		log.Printf("⚠️  Failed to remove output of %s: %v", path, err)
	}
	fmt.Println(ui.Warning("%s removed", path))
	w.notify(message{Type: "REMOVED", File: path})
}

func (w *watcher) notify(msg message) {
	if w.hub != nil {
		w.hub.broadcast(msg)
	}
}

// message is one compile event sent to WebSocket clients
type message struct {
	Type    string   `json:"type"`
	File    string   `json:"file,omitempty"`
	Output  string   `json:"output,omitempty"`
	Code    string   `json:"code,omitempty"`
	Helpers []string `json:"helpers,omitempty"`
	Cached  bool     `json:"cached,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// hub tracks connected WebSocket clients
type hub struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	upgrader websocket.Upgrader
}

// client serializes writes to one connection
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(msg message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(msg)
}

func newHub() *hub {
	return &hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
	}
}

func (h *hub) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	return mux
}

func (h *hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "HELLO":
			c.send(message{Type: "ACK"})
		default:
			log.Printf("Unknown WebSocket message type: %v", msg.Type)
		}
	}
}

func (h *hub) broadcast(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if err := c.send(msg); err != nil {
			log.Printf("Failed to send message to client: %v", err)
		}
	}
}

// clientCount reports how many clients are connected
func (h *hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
