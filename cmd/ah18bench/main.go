// Command ah18bench drives the ah18 symplectic N-body integrator over a
// scenario read from $AH18_CONFIG/scenario.toml, logging progress the way
// mission.go's Propagate/LogStatus ticker does and optionally recording
// the trajectory to CSV.
package main

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/spacemath/ah18/ah18"
)

func main() {
	cfg := benchConfig()
	x, v, m := cfg.initNBody()

	logger := ah18.DefaultLogger()
	s := ah18.NewState(len(m), cfg.G, x, v, m)
	d := ah18.NewDerivatives(len(m))

	var recChan chan<- frame
	var recWG *sync.WaitGroup
	if cfg.Record {
		var err error
		recChan, recWG, err = newRecorder(cfg.Out, len(m))
		if err != nil {
			logger.Log("level", "error", "subsys", "ah18bench", "message", err.Error())
			cfg.Record = false
		}
	}

	logger.Log("level", "notice", "subsys", "ah18bench", "status", "starting", "bodies", len(m), "steps", cfg.Steps, "h", cfg.H)
	start := time.Now()

	ticker := time.NewTicker(2 * time.Second)
	done := make(chan bool, 1)
	go func() {
		for {
			select {
			case <-ticker.C:
				logger.Log("level", "info", "subsys", "ah18bench", "status", "running", "t", s.T[0])
			case <-done:
				return
			}
		}
	}()

	for i := 0; i < cfg.Steps; i++ {
		ah18.Step(s, d, cfg.H, cfg.FastPair)
		if cfg.Record {
			recChan <- frame{Step: i, T: s.T[0], X: mat.DenseCopyOf(s.X), V: mat.DenseCopyOf(s.V)}
		}
	}
	ticker.Stop()
	done <- true

	if cfg.Record {
		close(recChan)
		recWG.Wait()
	}

	report := ah18.Show(s, logger)
	logger.Log("level", "notice", "subsys", "ah18bench", "status", "finished", "duration", time.Since(start).String(), "all_finite", report.AllFinite())
}
