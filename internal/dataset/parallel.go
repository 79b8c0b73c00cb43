package dataset

import (
	"runtime"
	"sync"

	"github.com/vcftk/vcftk/internal/vcf"
)

// workItem holds one record's raw genotype calls awaiting decode.
type workItem struct {
	seq   int
	calls [][]int
}

// workResult holds one decoded genotype row.
type workResult struct {
	seq int
	row []vcf.Genotype
}

// decodeGenotypes decodes raw calls using a pool of workers sized by the
// stream's thread hint. Results arrive on the returned channel in arrival
// order (not sequence order); use collectOrdered to consume them in stream
// order. If workers is 0, runtime.NumCPU() is used.
func decodeGenotypes(items <-chan workItem, workers int) <-chan workResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for item := range items {
				row := make([]vcf.Genotype, len(item.calls))
				for i, call := range item.calls {
					row[i] = vcf.DecodeGenotype(call)
				}
				results <- workResult{seq: item.seq, row: row}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// collectOrdered calls fn for each result in sequence-number order. It
// buffers out-of-order results in a pending map and emits them as soon as
// the next expected sequence number is available. Blocks until the results
// channel is closed.
func collectOrdered(results <-chan workResult, fn func(workResult) error) error {
	pending := make(map[int]workResult)
	nextSeq := 0

	for r := range results {
		pending[r.seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
