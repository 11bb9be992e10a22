package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	logicdb "github.com/vilterp/logicdb/pkg"
	clog "github.com/vilterp/logicdb/pkg/log"
	"go.uber.org/zap"
)

var familyRules = []string{
	"GP(x,z) <- PAR(x,y); PAR(y,z)",
	"SIB(x,y) <- PAR(p,x); PAR(p,y)",
	"COUSIN(x,y) <- PAR(p,x); SIB(p,q); PAR(q,y)",
	"GGP(x,z) <- GP(x,y); PAR(y,z)",
}

var workloadQuestions = []string{
	"GP(?,?)",
	"SIB(?,?)",
	"COUSIN(?,?)",
	"GGP(?,?)",
	"PAR(?,?)",
}

// personName spells i in base 26 with the letters a-z, so every person is a
// valid constant.
func personName(i int) string {
	name := []byte{'p'}
	for {
		name = append(name, byte('a'+i%26))
		i /= 26
		if i == 0 {
			break
		}
	}
	return string(name)
}

// writeFamily writes a knowledge base of numPeople people where everyone
// after the first few has a parent chosen among earlier people.
func writeFamily(w io.Writer, rng *rand.Rand, numPeople int) error {
	const numRoots = 3
	for i := numRoots; i < numPeople; i++ {
		parent := rng.Intn(i)
		if _, err := fmt.Fprintf(w, "PAR(%s,%s)\n", personName(parent), personName(i)); err != nil {
			return err
		}
	}
	for _, rule := range familyRules {
		if _, err := fmt.Fprintln(w, rule); err != nil {
			return err
		}
	}
	return nil
}

type workloadStats struct {
	mu        sync.Mutex
	questions int
	errors    int
	answers   int
	latency   time.Duration
}

func (s *workloadStats) record(numAnswers int, latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions++
	s.latency += latency
	if err != nil {
		s.errors++
		return
	}
	s.answers += numAnswers
}

// runWorkload asks questions round robin from numWorkers goroutines sharing
// client, numQuestions times in total.
func runWorkload(client *logicdb.Client, questions []string, numWorkers int, numQuestions int) *workloadStats {
	stats := &workloadStats{}
	work := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for question := range work {
				startTime := time.Now()
				answer, err := client.Ask(question)
				stats.record(len(answer), time.Since(startTime), err)
				if err != nil {
					clog.L().Warn("question failed", zap.String("question", question), zap.Error(err))
				}
			}
		}()
	}
	for i := 0; i < numQuestions; i++ {
		work <- questions[i%len(questions)]
	}
	close(work)
	wg.Wait()
	return stats
}

func workloadCmd(globals *globalFlags) *cobra.Command {
	var (
		url          string
		writeKB      string
		numPeople    int
		seed         int64
		numWorkers   int
		numQuestions int
	)
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Generate a family knowledge base, or ask a running server questions about one",
		Long: `With --write-kb, workload writes a random family knowledge base and exits.
Otherwise it asks the server at --url family questions from concurrent
workers and reports throughput.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.load(cmd)
			if err != nil {
				return err
			}
			defer clog.L().Sync()
			out := cmd.OutOrStdout()

			if writeKB != "" {
				file, err := os.Create(writeKB)
				if err != nil {
					return &exitError{code: exitIO, err: err}
				}
				defer file.Close()
				if err := writeFamily(file, rand.New(rand.NewSource(seed)), numPeople); err != nil {
					return &exitError{code: exitIO, err: err}
				}
				fmt.Fprintf(out, "wrote %d people to %s\n", numPeople, writeKB)
				return nil
			}

			if numWorkers <= 0 || numQuestions <= 0 {
				return &exitError{code: exitBadArguments, err: fmt.Errorf("--workers and --questions must be positive")}
			}
			if cmd.Flags().Changed("url") {
				cfg.Shell.URL = url
			}
			client, err := logicdb.NewClient(cfg.Shell.URL)
			if err != nil {
				return &exitError{code: exitIO, err: err}
			}
			defer client.Close()

			questions := append(familyQuestionsFor(personName(0)), workloadQuestions...)
			startTime := time.Now()
			stats := runWorkload(client, questions, numWorkers, numQuestions)
			elapsed := time.Since(startTime)
			fmt.Fprintf(
				out, "%d questions (%d failed), %d answers, in %s: %.1f questions/s, mean latency %s\n",
				stats.questions, stats.errors, stats.answers, elapsed,
				float64(stats.questions)/elapsed.Seconds(),
				stats.latency/time.Duration(stats.questions),
			)
			if stats.errors > 0 {
				return &exitError{code: exitUnanswerable, err: fmt.Errorf("%d questions failed", stats.errors)}
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&url, "url", "ws://localhost:9000/ws", "URL of logicdb server to connect to")
	flags.StringVar(&writeKB, "write-kb", "", "write a generated knowledge base here instead of asking questions")
	flags.IntVar(&numPeople, "people", 1000, "number of people in the generated knowledge base")
	flags.Int64Var(&seed, "seed", 1, "random seed for the generated knowledge base")
	flags.IntVar(&numWorkers, "workers", 4, "number of concurrent askers")
	flags.IntVar(&numQuestions, "questions", 1000, "total number of questions to ask")
	return cmd
}

// familyQuestionsFor lists one bound question per relation for person.
func familyQuestionsFor(person string) []string {
	var out []string
	for _, question := range workloadQuestions {
		out = append(out, strings.Replace(question, "?", person, 1))
	}
	return out
}
