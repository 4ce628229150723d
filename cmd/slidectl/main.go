// Package main provides the slideshow control CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/slidebox/internal/api/connect"
	"github.com/osa030/slidebox/internal/api/message"
	"github.com/osa030/slidebox/internal/app/interval"
)

var (
	app    = kingpin.New("slidectl", "slidebox slideshow client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()

	// viewer commands
	statusCmd  = app.Command("status", "Show playback status")
	presetsCmd = app.Command("presets", "List interval presets")
	watchCmd   = app.Command("watch", "Stream playback events")

	// control commands
	startCmd      = app.Command("start", "Start the slideshow")
	stopCmd       = app.Command("stop", "Stop the slideshow")
	pauseCmd      = app.Command("pause", "Pause the slideshow")
	resumeCmd     = app.Command("resume", "Resume a paused slideshow")
	nextCmd       = app.Command("next", "Show the next image")
	prevCmd       = app.Command("prev", "Show the previous image").Alias("previous")
	intervalCmd   = app.Command("interval", "Set the slide interval")
	intervalArg   = intervalCmd.Arg("duration", "Interval, e.g. 45, 45s or 2m").Required().String()
	loadCmd       = app.Command("load", "Load images from a directory on the server")
	loadDir       = loadCmd.Arg("dir", "Directory path on the server host").Required().String()
	fullscreenCmd = app.Command("fullscreen", "Toggle fullscreen on the display")
	fullscreenArg = fullscreenCmd.Arg("mode", "on or off").Required().Enum("on", "off")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewClient(http.DefaultClient, *server, *token)
	ctx := context.Background()

	switch command {
	case statusCmd.FullCommand():
		st, err := client.GetStatus(ctx)
		exitOnError(err)
		printStatus(st)
		return
	case presetsCmd.FullCommand():
		p, err := client.ListPresets(ctx)
		exitOnError(err)
		printPresets(p)
		return
	case watchCmd.FullCommand():
		watch(client)
		return
	}

	// Check admin token
	if *token == "" {
		fmt.Println("Error: admin token is required (use --token or ADMIN_TOKEN env)")
		os.Exit(1)
	}

	var (
		st  message.Status
		err error
	)
	switch command {
	case startCmd.FullCommand():
		st, err = client.Start(ctx)
	case stopCmd.FullCommand():
		st, err = client.Stop(ctx)
	case pauseCmd.FullCommand():
		st, err = client.Pause(ctx)
	case resumeCmd.FullCommand():
		st, err = client.Resume(ctx)
	case nextCmd.FullCommand():
		st, err = client.Next(ctx)
	case prevCmd.FullCommand():
		st, err = client.Previous(ctx)
	case intervalCmd.FullCommand():
		d, perr := interval.Parse(*intervalArg)
		exitOnError(perr)
		st, err = client.SetInterval(ctx, d)
	case loadCmd.FullCommand():
		st, err = client.Load(ctx, *loadDir)
	case fullscreenCmd.FullCommand():
		if *fullscreenArg == "on" {
			exitOnError(client.EnterFullscreen(ctx))
		} else {
			exitOnError(client.ExitFullscreen(ctx))
		}
		fmt.Printf("Fullscreen %s requested\n", *fullscreenArg)
		return
	}
	exitOnError(err)
	printStatus(st)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func watch(client *apiconnect.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		cancel()
	}()

	fmt.Println("Watching playback. Press Ctrl+C to exit.")
	err := client.WatchStatus(ctx, func(ev message.Event) error {
		printEvent(ev)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		fmt.Printf("Stream error: %v\n", err)
		os.Exit(1)
	}
}

func printStatus(s message.Status) {
	fmt.Println("\n=== SLIDESHOW STATUS ===")
	fmt.Printf("State: %s\n", s.State)
	fmt.Printf("Interval: %ds\n", s.IntervalSec)
	fmt.Printf("Next advance in: %ds\n", s.RemainingSec)
	if s.Current != nil {
		fmt.Printf("\nShowing %d/%d:\n", s.Index+1, s.Total)
		printImage(s.Current)
	} else {
		fmt.Println("\nNo images loaded")
	}
	fmt.Println()
}

func printPresets(p message.Presets) {
	fmt.Println("Interval presets:")
	for _, sec := range p.PresetsSec {
		marker := " "
		if sec == p.IntervalSec {
			marker = "*"
		}
		fmt.Printf("  %s %ds\n", marker, sec)
	}
	if !slices.Contains(p.PresetsSec, p.IntervalSec) {
		fmt.Printf("  * %ds (custom)\n", p.IntervalSec)
	}
}

func printEvent(ev message.Event) {
	if ev.Type == "tick" {
		fmt.Printf("\r  next advance in %3ds", ev.RemainingSec)
		return
	}

	fmt.Printf("\n[Sequence: %d] === %s ===\n", ev.SequenceNo, strings.ToUpper(strings.ReplaceAll(ev.Type, "_", " ")))
	fmt.Printf("  State: %s  Interval: %ds  Remaining: %ds\n", ev.State, ev.IntervalSec, ev.RemainingSec)
	if ev.Current != nil {
		fmt.Printf("  Showing %d/%d: %s\n", ev.Index+1, ev.Total, ev.Current.Name)
	} else {
		fmt.Println("  No images loaded")
	}
}

func printImage(img *message.Image) {
	fmt.Printf("  Image ID: %s\n", img.ID)
	fmt.Printf("  Name: %s\n", img.Name)
	fmt.Printf("  Type: %s\n", img.MIMEType)
	fmt.Printf("  Size: %d bytes\n", img.Size)
}
