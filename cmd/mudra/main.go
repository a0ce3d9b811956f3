package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/surface"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "HTTP listen address")
		dataDir   = flag.String("data", "", "data directory (default ~/.mudra)")
		device    = flag.Int("camera", 0, "camera device index")
		layouts   = flag.String("layouts", "", "comma-separated surface layout files")
		staticDir = flag.String("web", "", "static web directory (default: search common locations)")
		client    = flag.String("client", "", "screen rect of the camera canvas as left,top,width,height")
		useTray   = flag.Bool("tray", runtime.GOOS == "darwin", "show the system tray menu")
	)
	flag.Parse()

	fmt.Println("Mudra - Hands-free Interaction")

	if *dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		*dataDir = filepath.Join(homeDir, ".mudra")
	}
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(*dataDir, "mudra.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	surfaces, err := loadLayouts(*layouts)
	if err != nil {
		log.Fatalf("Failed to load layouts: %v", err)
	}

	clientRect, err := parseRect(*client)
	if err != nil {
		log.Fatalf("Invalid -client: %v", err)
	}

	cameraConfig := capture.DefaultConfig()
	cameraConfig.Device = *device

	a := app.New(app.Config{
		Store:        st,
		PluginDir:    filepath.Join(*dataDir, "plugins"),
		Camera:       cameraConfig,
		MotionThresh: capture.DefaultMotionThreshold,
		Layouts:      surfaces,
		ClientRect:   clientRect,
	})

	a.LoadEnabled()
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Failed to discover plugins: %v", err)
	}
	for _, load := range []func() error{a.LoadSettings, a.LoadTemplates, a.LoadViews, a.LoadRelays} {
		if err := load(); err != nil {
			log.Printf("Failed to load configuration: %v", err)
		}
	}

	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable, running without detection: %v", err)
	}
	defer a.Stop()

	webDir := *staticDir
	if webDir == "" {
		webDir = findWebDir(*dataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if !*useTray {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		log.Println("Shutting down")
		return
	}

	runTray(a, settingsURL(*addr))
}

// runTray shows the menu bar item and blocks until Quit is chosen.
func runTray(a *app.App, url string) {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() {
		if err := exec.Command("open", url).Start(); err != nil {
			log.Printf("Failed to open settings: %v", err)
		}
	})

	remove := a.Subscribe(func(surface string, e interaction.Event) {
		t.SetLastEvent(surface, e, time.Now())
	})
	defer remove()

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t.SetDispatched(a.Stats().Dispatched)
			}
		}
	}()

	t.Run()
}

func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// loadLayouts reads each comma-separated layout file.
func loadLayouts(paths string) ([]surface.Layout, error) {
	if paths == "" {
		return nil, nil
	}
	var layouts []surface.Layout
	for _, p := range strings.Split(paths, ",") {
		l, err := surface.LoadLayout(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	return layouts, nil
}

// parseRect parses "left,top,width,height". An empty string is the zero rect.
func parseRect(s string) (geometry.Rect, error) {
	if s == "" {
		return geometry.Rect{}, nil
	}
	var left, top, width, height float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g,%g", &left, &top, &width, &height); err != nil {
		return geometry.Rect{}, fmt.Errorf("expected left,top,width,height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return geometry.Rect{}, fmt.Errorf("width and height must be positive")
	}
	return geometry.NewRect(left, top, width, height), nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
