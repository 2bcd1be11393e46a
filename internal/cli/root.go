package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/phanxgames/willowmap"
	"github.com/phanxgames/willowmap/slippy"
)

type options struct {
	verbose      bool
	configPath   string
	doubleBuffer bool
	canvas       bool
	hidpi        bool
	center       string
	zoom         float64
	scriptPath   string
	width        int
	height       int
}

// Execute runs the willowmap command.
func Execute() error {
	var opts options

	root := &cobra.Command{
		Use:          "willowmap",
		Short:        "Show a willowmap overlay on a slippy map",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	f := root.Flags()
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML overlay config file")
	f.BoolVar(&opts.doubleBuffer, "double-buffer", false, "draw layouts off-screen and swap them in")
	f.BoolVar(&opts.canvas, "canvas", false, "use the software canvas renderer")
	f.BoolVar(&opts.hidpi, "hidpi", false, "render overlay surfaces at the monitor's device scale factor")
	f.StringVar(&opts.center, "center", "48.8566,2.3522", "initial center as lat,lng")
	f.Float64Var(&opts.zoom, "zoom", 5, "initial zoom")
	f.StringVar(&opts.scriptPath, "script", "", "JSON gesture script to replay")
	f.IntVar(&opts.width, "width", 1024, "window width")
	f.IntVar(&opts.height, "height", 768, "window height")

	return root.Execute()
}

func run(opts options) error {
	level := charmlog.InfoLevel
	if opts.verbose {
		level = charmlog.DebugLevel
	}
	logger := newLogger(os.Stderr, level)

	overlayOpts := willowmap.DefaultOptions()
	if opts.configPath != "" {
		var err error
		if overlayOpts, err = willowmap.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.doubleBuffer {
		overlayOpts.DoubleBuffering = true
	}
	if opts.canvas {
		overlayOpts.ForceCanvas = true
	}
	if opts.hidpi {
		overlayOpts.Resolution = ebiten.Monitor().DeviceScaleFactor()
	}
	overlayOpts.Logger = logger.WithPrefix("overlay")

	center, err := parseLatLng(opts.center)
	if err != nil {
		return err
	}

	cfg := slippy.DefaultConfig()
	cfg.Width, cfg.Height = opts.width, opts.height
	cfg.Center, cfg.Zoom = center, opts.zoom
	cfg.Logger = logger.WithPrefix("map")
	m := slippy.New(cfg)

	g, err := newGame(m, overlayOpts, logger)
	if err != nil {
		return err
	}
	if opts.scriptPath != "" {
		data, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if g.script, err = slippy.LoadScript(data); err != nil {
			return err
		}
	}

	ebiten.SetWindowTitle("willowmap")
	ebiten.SetWindowSize(opts.width, opts.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	logger.Info("starting", "doubleBuffering", overlayOpts.DoubleBuffering, "canvas", overlayOpts.ForceCanvas)
	return ebiten.RunGame(g)
}

func parseLatLng(s string) (willowmap.LatLng, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return willowmap.LatLng{}, fmt.Errorf("invalid center %q: want lat,lng", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return willowmap.LatLng{}, fmt.Errorf("invalid center latitude: %w", err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return willowmap.LatLng{}, fmt.Errorf("invalid center longitude: %w", err)
	}
	return willowmap.LatLng{Lat: la, Lng: ln}, nil
}
