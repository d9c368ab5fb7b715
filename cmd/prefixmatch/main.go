// Command prefixmatch is the batch and socket-server front end for the
// prefix-matching engine.
//
// Batch mode matches a string file against a pattern catalog:
//
//	prefixmatch -p patterns.txt -s strings.txt -m
//
// Server mode answers the stream JSON protocol over TCP or a unix
// socket:
//
//	prefixmatch -p patterns.txt -P 8080 -t 8
//	prefixmatch -p patterns.txt -S /tmp/pm.sock
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/attunepartners/prefix-match/internal/core/matcher"
	"github.com/attunepartners/prefix-match/internal/input"
	"github.com/attunepartners/prefix-match/internal/platform/logger"
	matchmod "github.com/attunepartners/prefix-match/internal/services/match/module"
	"github.com/attunepartners/prefix-match/internal/services/match/service"
	"github.com/attunepartners/prefix-match/internal/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		patternFile  = flag.String("p", "", "pattern file (required, gzip ok)")
		stringFile   = flag.String("s", "", "string file to match (gzip ok)")
		stopwordFile = flag.String("w", "", "stopwords file")
		threads      = flag.Int("t", 0, "worker threads (default: all cores)")
		tcpPort      = flag.Int("P", 0, "start TCP server on port")
		socketPath   = flag.String("S", "", "start unix socket server on path")
		matching     = flag.Bool("m", false, "extract matching substring")
		lcss         = flag.Bool("L", false, "enable LCSS matching")
		removeStops  = flag.Bool("W", false, "remove stopwords from patterns")
		verify       = flag.Bool("v", false, "verify catalog self-matches after load")
		logperf      = flag.Bool("l", false, "log pattern file processing")
		quiet        = flag.Bool("q", false, "quiet mode (minimal output)")
	)
	flag.Parse()

	if *patternFile == "" {
		fmt.Fprintln(os.Stderr, "error: pattern file required (-p)")
		flag.Usage()
		return 1
	}
	if *tcpPort > 0 && *socketPath != "" {
		fmt.Fprintln(os.Stderr, "error: cannot specify both TCP port (-P) and unix socket (-S)")
		return 1
	}
	serverMode := *tcpPort > 0 || *socketPath != ""

	// pattern processing chatter is opt-in via -l
	patternLog := logger.Named("catalog")
	if !*logperf {
		silenced := patternLog.Level(zerolog.Disabled)
		patternLog = &silenced
	}

	opts := matchmod.Options{
		PatternsPath:    *patternFile,
		StopwordsPath:   *stopwordFile,
		Matching:        *matching || serverMode, // servers always extract spans
		LCSS:            *lcss,
		RemoveStopwords: *removeStops,
		Workers:         *threads,
	}

	cat, err := matchmod.BuildCatalog(opts, patternLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	workers := *threads
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if !*quiet {
		st := cat.Stats()
		fmt.Fprintf(os.Stderr, "loaded %d patterns, %d trie blocks, %d KB\n",
			st.Patterns, st.Blocks, st.MemoryBytes/1024)
		fmt.Fprintf(os.Stderr, "using %d workers\n", workers)
	}

	flags := matcher.Flags{Matching: opts.Matching, LCSS: opts.LCSS}

	if *verify {
		bad := 0
		probe := matcher.NewContext(cat)
		for pid := uint32(1); pid <= cat.PatternCount(); pid++ {
			found := false
			for _, m := range matcher.Match(cat, cat.DisplayText(pid), flags, probe) {
				if m.PatternID == pid {
					found = true
					break
				}
			}
			if !found {
				bad++
				fmt.Fprintf(os.Stderr, "verify: pattern %d (%q) does not self-match\n",
					pid, cat.DisplayText(pid))
			}
		}
		if bad > 0 {
			return 1
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "verify: %d patterns self-match\n", cat.PatternCount())
		}
	}

	if serverMode {
		svc := service.New(cat, service.Config{Flags: flags, Workers: workers})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := wire.NewServer(svc, wire.Config{
			Addr:       tcpAddr(*tcpPort),
			SocketPath: *socketPath,
		})
		if err := srv.ListenAndServe(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if *stringFile == "" {
		fmt.Fprintln(os.Stderr, "no string file (-s) or server mode (-P/-S) specified")
		fmt.Fprintln(os.Stderr, "pattern file loaded successfully; use -h for help")
		return 0
	}

	lines, err := input.ReadAllLines(*stringFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "read %d lines\n", len(lines))
	}

	stats, err := input.RunBatch(cat, lines, input.BatchOptions{
		Workers: workers,
		Flags:   flags,
	}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if !*quiet {
		fmt.Fprintf(os.Stderr, "\nprocessed %d strings in %s\n", stats.Lines, stats.Elapsed)
		fmt.Fprintf(os.Stderr, "total matches: %d\n", stats.Matches)
		if secs := stats.Elapsed.Seconds(); secs > 0 {
			fmt.Fprintf(os.Stderr, "throughput: %d strings/sec\n", int(float64(stats.Lines)/secs))
		}
	}
	return 0
}

func tcpAddr(port int) string {
	if port <= 0 {
		return ""
	}
	return ":" + strconv.Itoa(port)
}
