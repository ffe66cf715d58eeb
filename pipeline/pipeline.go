package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"text2phenotype.com/negex/logger"
	"text2phenotype.com/negex/negation"
	"text2phenotype.com/negex/tokenizer"
	"text2phenotype.com/negex/types"
)

// Pipeline runs every configuration over one request and sends back a JSON
// object keyed by configuration name.
type Pipeline func(request Request) <-chan string

type Params struct {
	Configurations []types.Configuration `json:"configurations"`
	// SegmentSentences fills in sentence starts for text requests that carry none.
	SegmentSentences bool `json:"segment_sentences"`
}

type engine struct {
	cfg types.Configuration
	neg *negation.Negex
}

// NewEngine builds the negation engine for one configuration.
func NewEngine(cfg types.Configuration) (*negation.Negex, error) {
	ts, err := cfg.BuildTermSet()
	if err != nil {
		return nil, err
	}
	return negation.New(ts, negation.Config{
		EntityTypes:      cfg.EntityTypes,
		ExtensionName:    cfg.GetExtensionName(),
		ChunkPrefix:      cfg.ChunkPrefix,
		SpanKeys:         cfg.SpanKeys,
		RequireSentences: cfg.RequireSentences,
		PhraseTokenizer:  tokenizer.Words,
	})
}

func NewPipeline(params Params) (Pipeline, error) {
	negexLogger := logger.NewLogger("Negex pipeline")
	errLogger := negexLogger.With().Caller().Logger()
	negexLogger.Info().
		Interface("params", params).
		Msg("Starting negex pipeline (see parameters in 'params' field)")

	if len(params.Configurations) == 0 {
		return nil, fmt.Errorf("pipeline: no configurations")
	}

	engines := make([]engine, len(params.Configurations))
	for i, cfg := range params.Configurations {
		neg, err := NewEngine(cfg)
		if err != nil {
			errLogger.Err(err).
				Str("config_name", cfg.Name).
				Str("file_path", cfg.FilePath).
				Msg("Failed to create negation engine")
			return nil, err
		}
		engines[i] = engine{cfg: cfg, neg: neg}
	}

	var segmenter *tokenizer.SentenceSegmenter
	if params.SegmentSentences {
		var err error
		segmenter, err = tokenizer.NewSentenceSegmenter()
		if err != nil {
			errLogger.Err(err).Msg("Failed to create sentence segmenter")
			return nil, err
		}
	}

	return func(request Request) <-chan string {
		responseChan := make(chan string, 1)
		pplnLog := negexLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started negex pipeline")

		go func() {
			response := make(map[string]interface{}, len(engines))

			doc, err := BuildDocument(request, segmenter)
			if err != nil {
				pplnLog.Err(err).Msg("Failed to build document")
				for _, e := range engines {
					documentsProcessed.WithLabelValues(e.cfg.Name, statusError).Inc()
					response[e.cfg.Name] = NewErrorResult(request, err)
				}
			} else {
				resultChannel := make(chan Result, len(engines))
				for _, e := range engines {
					go func(e engine) {
						resultChannel <- run(e, doc.Copy(), request)
					}(e)
				}
				for range engines {
					res := <-resultChannel
					pplnLog.Info().
						Str("config_name", res.ConfigName).
						Msg("Finished pipeline for configuration")
					response[res.ConfigName] = res.Data
				}
			}

			buf, err := json.Marshal(response)
			if err != nil {
				pplnLog.Err(err).Msg("Failed to marshall response")
			}
			pplnLog.Info().Msg("Finished negex pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, nil
}

func run(e engine, doc *types.Document, request Request) Result {
	started := time.Now()
	result, err := e.neg.Analyze(doc)
	processingDuration.WithLabelValues(e.cfg.Name).Observe(time.Since(started).Seconds())
	if err != nil {
		documentsProcessed.WithLabelValues(e.cfg.Name, statusError).Inc()
		return Result{ConfigName: e.cfg.Name, Data: NewErrorResult(request, err)}
	}

	documentsProcessed.WithLabelValues(e.cfg.Name, statusOK).Inc()
	spansEvaluated.WithLabelValues(e.cfg.Name, outcomeNegated).Add(float64(result.Negated))
	spansEvaluated.WithLabelValues(e.cfg.Name, outcomeAffirmed).Add(float64(result.Evaluated - result.Negated))
	spansEvaluated.WithLabelValues(e.cfg.Name, outcomeSkipped).Add(float64(result.Skipped))
	return Result{
		ConfigName: e.cfg.Name,
		Data:       NewNegationResult(doc, e.neg, result, request),
	}
}
