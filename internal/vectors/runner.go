package vectors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/dcrodman/blowfish/pkg/blowfish"
)

// Result is the outcome of checking one vector.
type Result struct {
	Vector Vector
	// Hex ciphertext produced by the cipher, empty if it never got that far.
	Got string
	Err error
}

// Report collects the results of a run in table order.
type Report struct {
	Table  string
	Passed []Result
	Failed []Result
}

// OK reports whether every vector passed.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Runner checks vector tables against the blowfish package.
type Runner struct {
	// Number of goroutines checking vectors. Values below 1 are treated as 1.
	Workers int
	// Ciphers are looked up here before being scheduled. Nil uses a fresh
	// cache per run.
	Cache *CipherCache
	Log   *logrus.Logger
}

// Run checks every vector in t. Failing vectors do not make Run return an
// error; they are listed in the report. The only error is ctx ending first.
func (r *Runner) Run(ctx context.Context, t *Table) (*Report, error) {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	cache := r.Cache
	if cache == nil {
		cache = NewCipherCache(-1)
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(t.Vectors))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = check(cache, t.Vectors[idx])
			}
		}()
	}

	var runErr error
dispatch:
	for i := range t.Vectors {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if runErr != nil {
		return nil, runErr
	}

	report := &Report{Table: t.Name}
	for _, res := range results {
		entry := log.WithFields(logrus.Fields{"table": t.Name, "vector": res.Vector.Name})
		if res.Err != nil {
			entry.WithError(res.Err).Error("vector failed")
			if log.IsLevelEnabled(logrus.DebugLevel) {
				entry.Debug(spew.Sdump(res.Vector))
			}
			report.Failed = append(report.Failed, res)
			continue
		}
		entry.Debug("vector passed")
		report.Passed = append(report.Passed, res)
	}

	log.WithFields(logrus.Fields{
		"table":  t.Name,
		"passed": len(report.Passed),
		"failed": len(report.Failed),
	}).Info("finished vector table")
	return report, nil
}

func check(cache *CipherCache, v Vector) Result {
	res := Result{Vector: v}

	key, pt, ct, err := v.Decode()
	if err != nil {
		res.Err = err
		return res
	}

	bf, err := cache.Get(key)
	if err != nil {
		res.Err = expected(v, err, blowfish.ErrInvalidKeyLength, ExpectKeyLength)
		return res
	}

	got, err := bf.EncryptBlock(pt)
	if err != nil {
		res.Err = expected(v, err, blowfish.ErrInvalidBlockLength, ExpectBlockLength)
		return res
	}
	res.Got = fmt.Sprintf("%x", got)

	back, err := bf.DecryptBlock(ct)
	if err != nil {
		res.Err = expected(v, err, blowfish.ErrInvalidBlockLength, ExpectBlockLength)
		return res
	}

	switch {
	case v.ExpectError != "":
		res.Err = fmt.Errorf("expected a %s error, cipher accepted the vector", v.ExpectError)
	case !bytes.Equal(got, ct):
		res.Err = fmt.Errorf("ciphertext mismatch: got %x, want %x", got, ct)
	case !bytes.Equal(back, pt):
		res.Err = fmt.Errorf("plaintext mismatch: got %x, want %x", back, pt)
	}
	return res
}

// expected turns a cipher error into the vector's verdict: nil when the vector
// asked for exactly this kind of rejection, an explanatory error otherwise.
func expected(v Vector, err, sentinel error, want string) error {
	if v.ExpectError == want && errors.Is(err, sentinel) {
		return nil
	}
	return err
}
