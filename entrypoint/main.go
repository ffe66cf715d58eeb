package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"text2phenotype.com/negex/api"
	"text2phenotype.com/negex/logger"
	"text2phenotype.com/negex/pipeline"
	"text2phenotype.com/negex/types"
	"text2phenotype.com/negex/worker"
)

type Config struct {
	ConfigPath       string `envconfig:"NEGEX_CONFIG_PATH" required:"true"`
	RestAPIActive    bool   `envconfig:"NEGEX_REST_API_ACTIVE" default:"false"`
	RestAPIPort      string `envconfig:"NEGEX_REST_API_PORT" default:"10000"`
	SegmentSentences bool   `envconfig:"NEGEX_SEGMENT_SENTENCES" default:"true"`
	WorkerActive     bool   `envconfig:"NEGEX_WORKER_ACTIVE" default:"true"`
}

const pipelineStartMaxRetries = 5

func main() {
	logger.SetupLogging()
	negexLogger := logger.NewLogger("Main")
	fatalErrLogger := negexLogger.Fatal().Caller()

	if err := godotenv.Load(); err != nil {
		negexLogger.Debug().Err(err).Msg("No .env file loaded")
	}
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	//Load Pipeline
	pipelineChannel := make(chan pipeline.Pipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil || len(cfgs) == 0 {
				negexLogger.Err(err).Int("configurations", len(cfgs)).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			negexLogger.Info().Msgf("Loaded %d configurations", len(cfgs))

			ppln, err := pipeline.NewPipeline(pipeline.Params{
				Configurations:   cfgs,
				SegmentSentences: config.SegmentSentences,
			})
			if err != nil {
				negexLogger.Err(err).Msg("Failed to start negex pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			negexLogger.Info().Msg("Pipelines loaded")
			pipelineChannel <- ppln
			return
		}
		fatalErrLogger.Msg("Could not start pipelines after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	ppln := <-pipelineChannel

	if config.RestAPIActive {
		apiServer := func() {
			negexLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.Handle("/", api.WithAccessLog(http.HandlerFunc(apiRequest.ProcessData)))
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			negexLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, mux)
			negexLogger.Fatal().Caller().Err(err).Msg("REST API stopped with error")
		}
		if !config.WorkerActive {
			apiServer()
			return
		}
		go apiServer()
	}

	if !config.WorkerActive {
		fatalErrLogger.Msg("Neither the REST API nor the worker is active, exiting")
		os.Exit(1)
	}

	negexLogger.Info().Msg("Start Negex Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			negexLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			negexLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}
