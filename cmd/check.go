package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

// checkAction rewrites every file through all stages except evaluation.
// Files are checked by a pool of jobs workers; results print in argument
// order.
func checkAction(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("usage: scriptgo check [-j N] <file>...")
	}
	jobs := int(cmd.Int("jobs"))
	if jobs < 1 {
		jobs = 1
	}

	e := newEngine(cmd)
	type fileResult struct {
		out    bytes.Buffer
		failed bool
		done   chan struct{}
	}
	results := make([]fileResult, len(files))
	for i := range results {
		results[i].done = make(chan struct{})
	}
	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	ok, fail := color.New(color.FgGreen).SprintFunc(), color.New(color.FgRed).SprintFunc()
	var wg sync.WaitGroup
	for range min(jobs, len(files)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				r := &results[i]
				data, err := os.ReadFile(files[i])
				if err == nil {
					_, err = e.Rewrite(string(data))
				}
				if err != nil {
					r.failed = true
					fmt.Fprintf(&r.out, "%s %s\n    %v\n", fail("FAIL"), files[i], err)
				} else {
					fmt.Fprintf(&r.out, "%s   %s\n", ok("ok"), files[i])
				}
				close(r.done)
			}
		}()
	}

	w := cmd.Root().Writer
	failed := 0
	for i := range results {
		<-results[i].done
		w.Write(results[i].out.Bytes())
		if results[i].failed {
			failed++
		}
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
