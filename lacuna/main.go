package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/lacunajs/lacuna"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
var scanprofile = flag.String("scanprofile", "", "write sparsity scan profile (pprof format) to file")
var noFastPath = flag.Bool("nofastpath", false, "disable the representation fast path (benchmarks only; fixture checks always run both paths)")
var benchSize = flag.Int("bench", 0, "benchmark sparsity queries on arrays of this length instead of running fixtures")
var benchIters = flag.Int("iters", 200000, "number of queries per benchmark case")

func loadFixtures(args []string) ([]*lacuna.ConformanceFixture, error) {
	if len(args) == 0 {
		args = []string{"testdata/conformance"}
	}
	var fixtures []*lacuna.ConformanceFixture
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			fs, err := lacuna.LoadFixtureDir(arg)
			if err != nil {
				return nil, err
			}
			fixtures = append(fixtures, fs...)
		} else {
			f, err := lacuna.LoadFixture(arg)
			if err != nil {
				return nil, err
			}
			fixtures = append(fixtures, f)
		}
	}
	return fixtures, nil
}

func runFixtures(printer *message.Printer) error {
	fixtures, err := loadFixtures(flag.Args())
	if err != nil {
		return err
	}

	var ran, failed, skipped int
	for _, f := range fixtures {
		ok, err := f.Applicable(lacuna.Version)
		if err != nil {
			return err
		}
		if !ok {
			skipped += len(f.Vectors)
			fmt.Printf("skip %s (requires %s, version is %s)\n", f.Name, f.Requires, lacuna.Version)
			continue
		}
		for _, vec := range f.Vectors {
			ran++
			if err := vec.Check(); err != nil {
				failed++
				fmt.Printf("FAIL %s/%s: %v\n", f.Name, vec.Name, err)
			}
		}
	}
	printer.Printf("%d vectors, %d failed, %d skipped\n", ran, failed, skipped)
	if failed > 0 {
		return fmt.Errorf("%d of %d vectors failed", failed, ran)
	}
	return nil
}

func benchElements(n int, holey bool) []interface{} {
	elements := make([]interface{}, n)
	for i := range elements {
		elements[i] = i
	}
	if holey && n > 0 {
		elements[n/2] = nil
	}
	return elements
}

func runBench(printer *message.Printer, n, iters int) error {
	length := int64(n)
	cases := []struct {
		name  string
		value *lacuna.FixtureValue
	}{
		{"dense", &lacuna.FixtureValue{Kind: "array", Elements: benchElements(n, false)}},
		{"holey", &lacuna.FixtureValue{Kind: "array", Elements: benchElements(n, true)}},
		{"length-only", &lacuna.FixtureValue{Kind: "array", Length: &length}},
		{"goslice", &lacuna.FixtureValue{Kind: "goslice", Elements: benchElements(n, false)}},
	}

	var opts []lacuna.Option
	if *noFastPath {
		opts = append(opts, lacuna.WithoutFastPath())
	}

	for _, c := range cases {
		vm := lacuna.New(opts...)
		v, err := c.value.Build(vm)
		if err != nil {
			return err
		}
		var sparse bool
		start := time.Now()
		for i := 0; i < iters; i++ {
			s, err := vm.IsSparse(v)
			if err != nil {
				return err
			}
			sparse = s
		}
		elapsed := time.Since(start)
		if elapsed <= 0 {
			elapsed = time.Nanosecond
		}
		printer.Printf("%s: n=%d sparse=%v, %d queries in %v (%.0f queries/sec)\n",
			c.name, n, sparse, iters, elapsed.Round(time.Millisecond), float64(iters)/elapsed.Seconds())
	}
	return nil
}

func run() error {
	if *scanprofile != "" {
		f, err := os.Create(*scanprofile)
		if err != nil {
			return err
		}
		if err := lacuna.StartScanProfile(f); err != nil {
			f.Close()
			return err
		}
		defer func() {
			if err := lacuna.StopScanProfile(); err != nil {
				log.Println(err)
			}
			f.Close()
		}()
	}

	printer := message.NewPrinter(language.English)
	if *benchSize > 0 {
		return runBench(printer, *benchSize, *benchIters)
	}
	return runFixtures(printer)
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(); err != nil {
		switch err := err.(type) {
		case *lacuna.Exception:
			fmt.Println(err.String())
		default:
			fmt.Println(err)
		}
		os.Exit(64)
	}
}
