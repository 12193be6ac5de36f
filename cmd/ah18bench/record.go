package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// frame is one recorded snapshot of the integration, pushed down
// stateChan by the step loop and drained by the recorder goroutine.
type frame struct {
	Step int
	T    float64
	X, V *mat.Dense
}

// newRecorder starts the background goroutine that drains stateChan into
// a CSV file at path, mirroring mission.go's histChan/StreamStates
// pattern: a buffered channel plus a WaitGroup the caller waits on after
// closing the channel.
func newRecorder(path string, n int) (chan<- frame, *sync.WaitGroup, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create %s: %s", path, err)
	}
	stateChan := make(chan frame, 1000)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer f.Close()
		streamFrames(f, n, stateChan)
	}()
	return stateChan, &wg, nil
}

func streamFrames(f *os.File, n int, stateChan <-chan frame) {
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"step", "t"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i), fmt.Sprintf("vz%d", i))
	}
	if err := w.Write(header); err != nil {
		panic(err)
	}

	for fr := range stateChan {
		record := []string{fmt.Sprintf("%d", fr.Step), fmt.Sprintf("%g", fr.T)}
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				record = append(record, fmt.Sprintf("%g", fr.X.At(k, i)))
			}
			for k := 0; k < 3; k++ {
				record = append(record, fmt.Sprintf("%g", fr.V.At(k, i)))
			}
		}
		if err := w.Write(record); err != nil {
			panic(err)
		}
	}
}
