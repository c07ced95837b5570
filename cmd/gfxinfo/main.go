// Command gfxinfo lists the registered graphics backends and their
// adapters, opens a device and prints its capabilities.
//
// Usage:
//
//	gfxinfo [-config settings.toml] [-env .env] [-backend name] [-profile HiDef] [-draw out.png]
//
// With -draw it also renders a test quad and writes the back buffer as PNG.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"text/tabwriter"

	"github.com/gogpu/gfx"
	_ "github.com/gogpu/gfx/backend/gl/softgl"
	_ "github.com/gogpu/gfx/backend/wgpu"
)

type options struct {
	config  string
	env     string
	backend string
	profile string
	draw    string
	verbose bool
}

func main() {
	var o options
	flag.StringVar(&o.config, "config", "", "settings file (TOML)")
	flag.StringVar(&o.env, "env", ".env", "environment file read for GFX_* overrides")
	flag.StringVar(&o.backend, "backend", "", "backend name (default: best available)")
	flag.StringVar(&o.profile, "profile", "", "graphics profile: Reach, HiDef, FL10_0 ... FL11_1")
	flag.StringVar(&o.draw, "draw", "", "render a test quad and write the back buffer to this PNG file")
	flag.BoolVar(&o.verbose, "v", false, "log device events to stderr")
	flag.Parse()

	if err := run(os.Stdout, o); err != nil {
		fmt.Fprintln(os.Stderr, "gfxinfo:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, o options) error {
	if o.verbose {
		gfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer gfx.SetLogger(nil)
	}

	settings := gfx.DefaultSettings()
	if o.config != "" {
		var err error
		if settings, err = gfx.LoadSettingsFile(o.config); err != nil {
			return err
		}
	}
	if err := settings.ApplyEnv(o.env); err != nil {
		return err
	}
	if o.backend != "" {
		settings.Backend = o.backend
	}
	if o.profile != "" {
		settings.Profile = o.profile
	}

	listAdapters(w)

	m := gfx.NewDeviceManager(settings)
	if err := m.ApplyChanges(); err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	defer m.Dispose()
	dev := m.Device()
	a := dev.Adapter()
	pp := dev.PresentationParameters()
	fmt.Fprintf(w, "\ndevice: %s/%s profile %s back buffer %dx%d %s depth %s msaa %d\n",
		a.Backend(), a.Name(), dev.Profile(), pp.BackBufferWidth, pp.BackBufferHeight,
		pp.BackBufferFormat, pp.DepthStencilFormat, pp.MultiSampleCount)
	printCapabilities(w, dev.Capabilities())

	if o.draw == "" {
		return nil
	}
	if err := drawTestFrame(dev, o.draw); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	fmt.Fprintf(w, "\nwrote %s\n", o.draw)
	return nil
}

func listAdapters(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tADAPTER\tDEFAULT\tPROFILE\tDESCRIPTION")
	for _, name := range gfx.Backends() {
		adapters, err := gfx.AdaptersFor(name)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", name, err)
			continue
		}
		if len(adapters) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tno adapters\n", name)
		}
		for _, a := range adapters {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", name, a.Name(), a.IsDefault(), a.HighestProfile(), a.Description())
		}
	}
	_ = tw.Flush()
}

// printCapabilities writes one line per capability field.
func printCapabilities(w io.Writer, caps gfx.GraphicsCapabilities) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	v := reflect.ValueOf(caps)
	for i := range v.NumField() {
		fmt.Fprintf(tw, "  %s\t%v\n", v.Type().Field(i).Name, v.Field(i).Interface())
	}
	_ = tw.Flush()
}
