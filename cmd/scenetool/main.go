// scenetool is a CLI utility for inspecting tilt maze scene files.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/tiltmaze/internal/bvh"
	"github.com/Faultbox/tiltmaze/internal/config"
	"github.com/Faultbox/tiltmaze/internal/game"
	"github.com/Faultbox/tiltmaze/internal/physics"
	"github.com/Faultbox/tiltmaze/internal/scene"
	"github.com/Faultbox/tiltmaze/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bvh":
		cmdBVH(args)
	case "query", "q":
		cmdQuery(args)
	case "route":
		cmdRoute(args)
	case "dump":
		os.Stdout.Write(scene.DefaultSource())
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - tilt maze scene utility

Usage:
  scenetool <command> [options]

Commands:
  info [scene.yaml]                  Show meshes, zones and triangle counts
  bvh [-split s] [-leaf n] [scene]   Build and validate every mesh tree
  query <x> <y> <z> <r> [scene]      List contacts of a sphere
  route [scene.yaml]                 Print the cell route from spawn to goal
  dump                               Print the built-in maze
  init-config [path]                 Write the default config

Without a scene file the built-in maze is used.

Examples:
  scenetool info levels/spiral.yaml
  scenetool bvh -split median
  scenetool query 1.5 0.3 1.5 0.31
  scenetool init-config ./config.yaml`)
}

// loadScene loads the scene at path, or the built-in maze for "".
func loadScene(path string) *scene.Scene {
	if path == "" {
		return scene.Default()
	}
	sc, err := scene.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return sc
}

func build(sc *scene.Scene, opts physics.Options) *scene.Level {
	lvl, err := sc.Build(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return lvl
}

func cmdInfo(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	sc := loadScene(path)
	lvl := build(sc, physics.DefaultOptions())

	spawn := lvl.World.Spawn()
	fmt.Printf("Scene:   %s\n", lvl.Name)
	fmt.Printf("Ball:    r=%.3f m=%.3f at %.2f %.2f %.2f\n", sc.Ball.Radius, sc.Ball.Mass, spawn.X, spawn.Y, spawn.Z)
	fmt.Printf("Bounds:  %v .. %v\n", lvl.Bounds.Min, lvl.Bounds.Max)
	fmt.Println()
	fmt.Println("Meshes:")

	meshes := lvl.World.Meshes()
	sort.Slice(meshes, func(i, j int) bool {
		return len(meshes[i].Soup()) > len(meshes[j].Soup())
	})
	platforms := map[physics.MeshHandle]bool{}
	for _, h := range lvl.Platforms {
		platforms[h] = true
	}
	for _, m := range meshes {
		kind := "static"
		if platforms[m.Handle()] {
			kind = "platform"
		}
		fmt.Printf("  %-14s %-8s %5d tris  e=%.2f mu=%.2f\n",
			m.Name, kind, len(m.Soup()), m.Material.Restitution, m.Material.Friction)
	}

	if zones := lvl.World.Zones(); len(zones) > 0 {
		fmt.Println()
		fmt.Println("Zones:")
		for _, z := range zones {
			fmt.Printf("  %-14s accel %v\n", z.Name, z.Acceleration)
		}
	}
}

func cmdBVH(args []string) {
	fs := flag.NewFlagSet("bvh", flag.ExitOnError)
	split := fs.String("split", "midpoint", "Split heuristic (midpoint, median)")
	leaf := fs.Int("leaf", bvh.DefaultMaxLeafSize, "Maximum primitives per leaf")
	fs.Parse(args)

	splitter, err := bvh.SplitterByName(*split)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts := physics.DefaultOptions()
	opts.BVH = bvh.Options{MaxLeafSize: *leaf, Splitter: splitter, MinExtent: bvh.DefaultMinExtent}

	start := time.Now()
	lvl := build(loadScene(fs.Arg(0)), opts)
	elapsed := time.Since(start)

	failed := false
	for _, m := range lvl.World.Meshes() {
		t := m.Tree()
		st := t.Stats()
		status := "ok"
		if err := t.Validate(); err != nil {
			status = err.Error()
			failed = true
		}
		fmt.Printf("  %-14s %5d prims %5d nodes %4d leaves  depth %2d  max leaf %d  %s\n",
			m.Name, st.Primitives, st.Nodes, st.Leaves, st.Depth, st.MaxLeaf, status)
	}
	fmt.Printf("\nBuilt in %v (%s split, leaf %d)\n", elapsed, *split, *leaf)
	if failed {
		os.Exit(1)
	}
}

func cmdQuery(args []string) {
	if len(args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool query <x> <y> <z> <r> [scene.yaml]")
		os.Exit(1)
	}
	var v [4]float32
	for i := range v {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad number %q: %v\n", args[i], err)
			os.Exit(1)
		}
		v[i] = float32(f)
	}
	path := ""
	if len(args) > 4 {
		path = args[4]
	}
	lvl := build(loadScene(path), physics.DefaultOptions())

	center := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	contacts := lvl.World.Query(center, v[3])
	for _, c := range contacts {
		name := c.Mesh.String()
		if m, err := lvl.World.Mesh(c.Mesh); err == nil {
			name = m.Name
		}
		fmt.Printf("  %-14s tri %4d  depth %.5f  normal %6.3f %6.3f %6.3f  at %.3f %.3f %.3f\n",
			name, c.Triangle, c.Penetration,
			c.Normal.X, c.Normal.Y, c.Normal.Z,
			c.Point.X, c.Point.Y, c.Point.Z)
	}
	fmt.Fprintf(os.Stderr, "\n(%d contacts)\n", len(contacts))
}

func cmdRoute(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	g, err := game.New(config.Default(), loadScene(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ap, err := game.NewAutopilot(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	route := ap.Route()
	steps := make([]string, len(route))
	for i, c := range route {
		steps[i] = fmt.Sprintf("(%d,%d)", c.Col, c.Row)
	}
	fmt.Println(strings.Join(steps, " "))
	fmt.Fprintf(os.Stderr, "\n(%d cells)\n", len(route))
}

func cmdInitConfig(args []string) {
	cfg := config.Default()
	var err error
	if len(args) > 0 {
		err = cfg.SaveTo(args[0])
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
