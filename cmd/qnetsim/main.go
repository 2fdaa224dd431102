// Command qnetsim sweeps the two GHZ-merge protocols over a fidelity grid
// and reports the achieved GHZ fidelity per grid point.
package main

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/qnetsim/internal/config"
	"github.com/aristath/qnetsim/internal/modules/bell"
	"github.com/aristath/qnetsim/internal/modules/merge"
	"github.com/aristath/qnetsim/pkg/logger"
	"github.com/aristath/qnetsim/pkg/operator"
	"github.com/aristath/qnetsim/pkg/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config may itself be broken; use a default logger to report.
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.Pretty})
	logger.SetGlobalLogger(log)

	runID := uuid.New().String()
	log.Info().Str("run_id", runID).Msg("Starting GHZ merge sweep")

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	merger := merge.NewMerger(log, rand.NewPCG(seed, seed^0xda942042e4dd58b5))

	probs := normalize(cfg.BellProbs)
	bds, err := bell.Diagonal(probs, [4]int{0, 1, 2, 3})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build Bell-diagonal resource state")
	}
	ghz, err := bell.GHZ(3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build GHZ target")
	}

	for step := 0; step < cfg.GridSteps; step++ {
		fid := 1.0
		if cfg.GridSteps > 1 {
			fid = cfg.FidelityMin + (1-cfg.FidelityMin)*float64(step)/float64(cfg.GridSteps-1)
		}

		direct, err := ensembleFidelity(merger.DirectEnsemble, bds, fid, ghz)
		if err != nil {
			log.Fatal().Err(err).Float64("fidelity", fid).Msg("Direct merge failed")
		}
		teleport, err := ensembleFidelity(merger.TeleportedEnsemble, bds, fid, ghz)
		if err != nil {
			log.Fatal().Err(err).Float64("fidelity", fid).Msg("Teleported merge failed")
		}

		log.Info().
			Str("run_id", runID).
			Float64("gate_fidelity", fid).
			Float64("direct_ghz_fidelity", direct.Mean).
			Float64("direct_ghz_fidelity_min", direct.Min).
			Float64("teleported_ghz_fidelity", teleport.Mean).
			Float64("teleported_ghz_fidelity_min", teleport.Min).
			Msg("Grid point complete")
	}

	log.Info().Str("run_id", runID).Msg("Sweep complete")
}

// ensembleFidelity runs one protocol in mixture mode and summarizes the
// per-branch fidelities to the GHZ target, weighted by branch probability.
func ensembleFidelity(
	protocol func(*operator.Operator, *operator.Operator, float64, float64) (merge.Ensemble, error),
	bds *operator.Operator,
	fid float64,
	ghz *operator.Ket,
) (stats.Summary, error) {
	ensemble, err := protocol(bds, bds, fid, fid)
	if err != nil {
		return stats.Summary{}, err
	}
	fids := make([]float64, len(ensemble))
	weights := make([]float64, len(ensemble))
	for i, branch := range ensemble {
		f, err := operator.PureStateFidelity(branch.State, ghz)
		if err != nil {
			return stats.Summary{}, err
		}
		fids[i] = f
		weights[i] = branch.Probability
	}
	return stats.Summarize(fids, weights), nil
}

func normalize(probs [4]float64) [4]float64 {
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
