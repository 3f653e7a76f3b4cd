// SPDX-FileCopyrightText: 2021 The margaret Authors
//
// SPDX-License-Identifier: MIT

// downfile writes JSON documents to archives and inspects existing ones.
//
//	downfile [flags] dump <archive> <input.json>
//	downfile [flags] cat <archive>
//	downfile [flags] ls <archive>
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
	"go.mindeco.de/log"
	"go.mindeco.de/log/level"
	"go.mindeco.de/logging"

	"github.com/ssbc/downfile"
	"github.com/ssbc/downfile/formats"
	"github.com/ssbc/downfile/frame"
)

var check = logging.CheckFatal

var (
	flagBackend = flag.String("backend", string(downfile.BackendZip), "archive container (zip, dir, kv, sqlite, badger)")
	flagZstd    = flag.Bool("zstd", false, "compress zip members with zstd")
	flagTmp     = flag.String("tmp", "", "directory for temporary member files")
	flagVerbose = flag.Bool("v", false, "log every allocated and decoded entry")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] dump <archive> <input.json> | cat <archive> | ls <archive>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 2 {
		usage()
	}

	logging.SetupLogging(nil)
	logger := logging.Logger("downfile")
	if *flagVerbose {
		logger = level.NewFilter(logger, level.AllowAll())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	opts := []downfile.Option{
		downfile.WithBackend(downfile.Backend(*flagBackend)),
		downfile.WithTempDir(*flagTmp),
		downfile.WithLogger(logger),
	}
	if *flagZstd {
		opts = append(opts, downfile.WithCompression(downfile.CompressZstd))
	}

	reg := formats.Default()
	path := flag.Arg(1)

	switch flag.Arg(0) {
	case "dump":
		if flag.NArg() != 3 {
			usage()
		}
		v, err := readInput(flag.Arg(2))
		check(err)
		check(downfile.Dump(path, v, reg, opts...))
		level.Info(logger).Log("event", "dumped", "archive", path)

	case "cat":
		v, err := downfile.Parse(path, reg, opts...)
		check(err)
		enc := codec.NewEncoder(os.Stdout, prettyJSON())
		check(enc.Encode(plain(v)))
		fmt.Println()

	case "ls":
		rep, err := downfile.Check(path, reg, opts...)
		check(err)
		printReport(logger, rep)

	default:
		usage()
	}
}

func readInput(name string) (interface{}, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input")
	}
	defer f.Close()

	var v interface{}
	err = codec.NewDecoder(f, formats.JSONHandle).Decode(&v)
	return v, errors.Wrapf(err, "failed to decode %s", name)
}

func prettyJSON() *codec.JsonHandle {
	var h codec.JsonHandle
	h.Canonical = true
	h.Indent = 2
	return &h
}

// plain replaces decoded values JSON cannot print with a readable form.
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case formats.Date:
		return x.String()
	case time.Time:
		return x.Format(formats.LayoutDateTime)
	case *frame.Frame:
		cols := make(map[string]interface{}, len(x.Columns()))
		for _, c := range x.Columns() {
			vals := make([]interface{}, c.Len())
			for i := range vals {
				vals[i] = c.Value(i)
			}
			cols[c.Name] = vals
		}
		return cols
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	}
	return v
}

func printReport(logger log.Logger, rep *downfile.Report) {
	for _, m := range rep.Members {
		mark := " "
		if !m.Referenced {
			mark = "!"
		}
		fmt.Printf("%s %-12s %8d %016x\n", mark, m.Name, m.Size, m.Sum)
	}
	if len(rep.Orphans) > 0 {
		level.Warn(logger).Log("event", "orphaned members", "names", fmt.Sprint(rep.Orphans))
	}
	if len(rep.Gaps) > 0 {
		level.Warn(logger).Log("event", "allocation gaps", "indices", fmt.Sprint(rep.Gaps))
	}
}
