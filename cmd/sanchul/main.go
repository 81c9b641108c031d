package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/sanchul-dev/sanchul/internal/datasource"
	"github.com/sanchul-dev/sanchul/pkg/config"
	"github.com/sanchul-dev/sanchul/pkg/debug"
	"github.com/sanchul-dev/sanchul/pkg/project"
	"github.com/sanchul-dev/sanchul/pkg/ui"
	"github.com/sanchul-dev/sanchul/pkg/version"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")
	projectName := flag.String("project", "", "Project to open (empty: unsaved session)")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: sanchul [options]")
		fmt.Println("\nA TUI for electrical construction quantity estimation (산출내역).")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("sanchul %s\n", version.Version)
		os.Exit(0)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// The dictionary can live in several places; pick the freshest valid
	// candidate before the core context loads it. Discovery and the category
	// list read are independent, so they run concurrently.
	var categories []string
	var g errgroup.Group
	g.Go(func() error {
		if best, ok := datasource.SelectBest(datasource.DiscoveryOptions{
			ConfiguredPath: cfg.Stores.DictionaryDB,
			DataRoot:       cfg.DataRoot,
			Logger:         func(msg string) { debug.Log("datasource: %s", msg) },
		}); ok {
			cfg.Stores.DictionaryDB = best.Path
			debug.Log("dictionary: %s (%d entries)", best.Path, best.EntryCount)
		}
		return nil
	})
	g.Go(func() error {
		if cfg.CategoryList != "" {
			categories = project.LoadCategoryList(cfg.CategoryList)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		os.Exit(1)
	}

	core := project.NewCoreContext(cfg, *projectName)
	defer core.Teardown()

	for _, c := range categories {
		core.State.Summary().InsertRowFromTemplate(c)
	}

	p := tea.NewProgram(ui.NewApp(core), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
