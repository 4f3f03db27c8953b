package stereo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dixieflatline76/Pano/util"
	"github.com/dixieflatline76/Pano/util/log"
)

// ErrDuplicateOutput is returned for a job whose output path another job
// of the same pipeline already writes, e.g. "pano.png" and "pano.jpg".
var ErrDuplicateOutput = errors.New("output path already used by another job")

// Job is one source image to project.
type Job struct {
	ID      string
	SrcPath string
}

// Result is the outcome of a Job.
type Result struct {
	Job      Job
	OutPath  string
	Err      error
	Duration time.Duration
}

// Pipeline manages a pool of workers projecting image files.
type Pipeline struct {
	jobChan    chan Job
	resultChan chan Result
	workerWg   sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	processor  *Processor
	files      *FileManager
	format     string

	mu     sync.RWMutex
	closed util.SafeFlag

	outputsMu sync.Mutex
	outputs   map[string]string // output path -> source path

	processed *util.SafeCounter
	failed    *util.SafeCounter
}

// NewPipeline creates a pipeline writing format files (e.g. "png") through files.
func NewPipeline(ctx context.Context, proc *Processor, files *FileManager, format string) *Pipeline {
	ctx, cancel := context.WithCancel(ctx)
	return &Pipeline{
		jobChan:    make(chan Job, 100),
		resultChan: make(chan Result, 100),
		ctx:        ctx,
		cancel:     cancel,
		processor:  proc,
		files:      files,
		format:     format,
		outputs:    make(map[string]string),
		processed:  util.NewSafeCounter(0),
		failed:     util.NewSafeCounter(0),
	}
}

// Start starts the worker pool. Results is closed once every worker has exited.
func (p *Pipeline) Start(workerCount int) {
	if workerCount <= 0 {
		workerCount = 1
	}
	log.Printf("Starting Pipeline with %d workers", workerCount)
	for i := 0; i < workerCount; i++ {
		p.workerWg.Add(1)
		go p.workerLoop(i)
	}

	go func() {
		p.workerWg.Wait()
		close(p.resultChan)
	}()
}

// Submit queues srcPath. It returns false once the pipeline is closed or stopped.
func (p *Pipeline) Submit(srcPath string) (Job, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Value() {
		return Job{}, false
	}

	job := Job{ID: uuid.NewString(), SrcPath: srcPath}
	select {
	case p.jobChan <- job:
		return job, true
	case <-p.ctx.Done():
		return Job{}, false
	}
}

// Results returns the channel results are delivered on.
func (p *Pipeline) Results() <-chan Result {
	return p.resultChan
}

// Close stops accepting jobs. Queued jobs are still processed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed.Set(true) {
		close(p.jobChan)
	}
}

// Stop cancels in-flight work and waits for the workers to exit.
func (p *Pipeline) Stop() {
	log.Println("Stopping Pipeline...")
	p.cancel()
	p.Close()
	p.workerWg.Wait()
	log.Println("Pipeline Stopped.")
}

// Stats returns how many jobs succeeded and failed so far.
func (p *Pipeline) Stats() (processed, failed int) {
	return p.processed.Value(), p.failed.Value()
}

// ProcessAll submits every path, closes the pipeline and collects the
// results. The pipeline must have been started.
func (p *Pipeline) ProcessAll(paths []string) []Result {
	go func() {
		for _, path := range paths {
			if _, ok := p.Submit(path); !ok {
				break
			}
		}
		p.Close()
	}()

	var results []Result
	for res := range p.Results() {
		results = append(results, res)
	}
	return results
}

// workerLoop is the main loop for a worker goroutine.
func (p *Pipeline) workerLoop(id int) {
	defer p.workerWg.Done()
	log.Debugf("Worker %d started", id)

	for {
		select {
		case <-p.ctx.Done():
			log.Debugf("Worker %d stopping", id)
			return
		case job, ok := <-p.jobChan:
			if !ok {
				log.Debugf("Worker %d done", id)
				return
			}
			res := p.process(job)
			if res.Err != nil {
				p.failed.Increment()
				log.Printf("Pipeline Error: %s: %v", job.SrcPath, res.Err)
			} else {
				p.processed.Increment()
			}
			select {
			case p.resultChan <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pipeline) process(job Job) Result {
	start := time.Now()
	res := Result{Job: job}

	outPath, err := p.files.OutputPath(job.SrcPath, p.format)
	if err != nil {
		res.Err = err
		return res
	}
	if err := p.claimOutput(outPath, job.SrcPath); err != nil {
		res.Err = err
		return res
	}
	img, err := p.files.Load(job.SrcPath)
	if err != nil {
		res.Err = err
		return res
	}
	view, err := p.processor.Process(p.ctx, img)
	if err != nil {
		res.Err = err
		return res
	}
	if err := p.files.Save(view, outPath); err != nil {
		res.Err = err
		return res
	}

	res.OutPath = outPath
	res.Duration = time.Since(start)
	return res
}

// claimOutput reserves outPath for srcPath. A path stays claimed for the
// pipeline's lifetime, even when the job that claimed it fails.
func (p *Pipeline) claimOutput(outPath, srcPath string) error {
	p.outputsMu.Lock()
	defer p.outputsMu.Unlock()
	if owner, ok := p.outputs[outPath]; ok {
		return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, owner, srcPath, outPath)
	}
	p.outputs[outPath] = srcPath
	return nil
}
