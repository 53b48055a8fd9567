package main

import (
	"flag"
	"os"

	fountain "github.com/gekko3d/fountain"
)

func main() {
	cfg, err := fountain.ConfigFromEnv()
	if err != nil {
		fountain.NewDefaultLogger("fountain", false).Errorf("config: %v", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "local or cluster")
	flag.StringVar(&cfg.Role, "role", cfg.Role, "master or replica (cluster mode)")
	flag.StringVar(&cfg.Address, "addr", cfg.Address, "cluster address to listen on (master) or dial (replica)")
	flag.IntVar(&cfg.Replicas, "replicas", cfg.Replicas, "replica count the master waits for")
	flag.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without a window")
	flag.Float64Var(&cfg.ParticlesPerSecond, "rate", cfg.ParticlesPerSecond, "particles spawned per second")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fountain.NewDefaultLogger("fountain", false).Errorf("config: %v", err)
		os.Exit(1)
	}

	cluster := cfg.ClusterConfig()
	log := fountain.NewDefaultLogger(cluster.Role.String(), cfg.Debug)

	dist, err := fountain.NewDistributor(cluster, log)
	if err != nil {
		log.Errorf("cluster setup: %v", err)
		os.Exit(1)
	}
	defer dist.Close()

	builder := fountain.NewAppBuilder().
		UseModule(
			fountain.LoggingModule{Prefix: cluster.Role.String(), Debug: cfg.Debug},
			fountain.TimeModule{},
		)

	if !cfg.Headless {
		builder.UseModule(
			fountain.NewPlatformWindow(cfg.WindowWidth, cfg.WindowHeight, cfg.WindowTitle),
			fountain.InputModule{},
			fountain.WalkCameraModule{},
		)
	}

	builder.UseModule(
		fountain.SyncModule{Distributor: dist},
		fountain.FountainModule{Params: cfg.FountainParams()},
	)

	if !cfg.Headless {
		builder.UseModule(fountain.PointsRendererModule{})
	}

	log.Infof("starting up main loop (%s, %s mode)", cluster.Role, cfg.Mode)
	builder.Build().Run()
	log.Infof("cleaning up")
}
