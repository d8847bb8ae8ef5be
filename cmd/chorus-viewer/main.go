package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/skovlyst/chorusmap/pkg/densitymap"
	"github.com/skovlyst/chorusmap/pkg/sources"
	"github.com/skovlyst/chorusmap/pkg/store"
)

var (
	baseURLFlag   = flag.String("base-url", "", "Data server base URL (e.g. https://data.example.org/season-2025)")
	dataDirFlag   = flag.String("data-dir", "", "Local season dump directory (alternative to -base-url)")
	speciesFlag   = flag.String("species", "", "Comma-separated species to load")
	cacheDirFlag  = flag.String("cache-dir", "data/cache", "On-disk fetch cache directory (empty to disable)")
	clearCache    = flag.Bool("clear-cache", false, "Drop the fetch cache before loading")
	callsDirFlag  = flag.String("calls-dir", "", "Directory of species call MP3s (optional)")
	liveURLFlag   = flag.String("live-url", "", "Websocket URL of the live detection feed (optional)")
	weatherURL    = flag.String("weather-url", "", "Daily-weather API endpoint (optional)")
	renderWidth   = flag.Int("width", 1280, "Internal rendering width")
	renderHeight  = flag.Int("height", 960, "Internal rendering height")
	bandwidthFlag = flag.Float64("bandwidth", 36, "Gaussian kernel bandwidth in pixels")
	spriteFlag    = flag.Bool("sprite", false, "Start in glow-sprite mode instead of the exact density field")
	resizableFlag = flag.Bool("resizable", false, "Let the rendering follow window resizes")
	tpsFlag       = flag.Int("tps", 30, "Ticks per second (engine updates)")
	windowWidth   = flag.Int("window-width", 1280, "Initial window width")
	windowHeight  = flag.Int("window-height", 960, "Initial window height")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if *baseURLFlag == "" && *dataDirFlag == "" {
		log.Fatal("One of -base-url or -data-dir is required")
	}
	speciesList := strings.Split(*speciesFlag, ",")
	if *speciesFlag == "" || len(speciesList) == 0 {
		log.Fatal("-species is required (comma-separated)")
	}

	loader := &sources.Loader{BaseURL: *baseURLFlag, Dir: *dataDirFlag}
	if *cacheDirFlag != "" && *dataDirFlag == "" {
		cache, err := store.Open(*cacheDirFlag)
		if err != nil {
			log.Fatalf("Failed to open fetch cache: %v", err)
		}
		defer cache.Close()
		if *clearCache {
			if err := cache.Clear(); err != nil {
				log.Fatalf("Failed to clear fetch cache: %v", err)
			}
		}
		loader.Cache = cache
	}

	loggers, err := loader.Loggers()
	if err != nil {
		log.Fatalf("Failed to load logger positions: %v", err)
	}
	log.Printf("Loaded %d logger positions", len(loggers))

	series := make(map[string]*densitymap.DetectionSeries)
	for _, sp := range speciesList {
		sp = strings.TrimSpace(sp)
		s, err := loader.Series(sp)
		if err != nil {
			log.Fatalf("Failed to load detection series for %s: %v", sp, err)
		}
		series[sp] = s
		log.Printf("Loaded %s: %d days, %d sites", sp, s.Len(), len(s.Sites))
	}

	perimeter, err := loader.Perimeter()
	if err != nil {
		log.Printf("Perimeter unavailable (overlay omitted): %v", err)
	}

	engine := densitymap.NewEngine(*renderWidth, *renderHeight)
	engine.Bandwidth = *bandwidthFlag
	if *spriteFlag {
		engine.Mode = densitymap.ModeSprite
	}
	if err := engine.SetData(loggers, series, perimeter); err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	if *weatherURL != "" {
		first := series[strings.TrimSpace(speciesList[0])]
		b := densitymap.BoundsFor(loggers, 0)
		temps := sources.FetchDailyTemps(*weatherURL, b.CenterLat(), (b.MinLon+b.MaxLon)/2,
			first.Dates[0], first.Dates[first.Len()-1])
		engine.SetWeather(temps)
	}

	if *callsDirFlag != "" {
		engine.Calls = densitymap.NewCallPlayer(*callsDirFlag)
		engine.Calls.OnMetadata = func(title, recordist string) {
			log.Printf("Call sample: %s (recordist: %s)", title, recordist)
		}
		engine.Calls.Play(strings.TrimSpace(speciesList[0]))
	}

	if *liveURLFlag != "" {
		feed := &sources.LiveFeed{URL: *liveURLFlag, OnEvent: engine.QueueLiveEvent}
		go feed.Listen()
	}

	if *resizableFlag {
		engine.Resizable = true
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	ebiten.SetTPS(*tpsFlag)
	ebiten.SetWindowSize(*windowWidth, *windowHeight)
	ebiten.SetWindowTitle("chorusmap")
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}
