// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/ballast-fi/robo-advisor/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// colours
const (
	keyColour1 = "\033[1;36m"
	keyColour2 = "\033[1;31m"
	valColour1 = "\033[1;33m"
	valColour2 = "\033[1;34m"
	endColour  = "\033[0m"
)

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "list", HasArg: getoptions.NO_ARGUMENT, Short: 'l'},
		{Long: "all", HasArg: getoptions.NO_ARGUMENT, Short: 'A'},
		{Long: "early", HasArg: getoptions.NO_ARGUMENT, Short: 'e'},
		{Long: "colour", HasArg: getoptions.NO_ARGUMENT, Short: 'g'},
		{Long: "ascii", HasArg: getoptions.NO_ARGUMENT, Short: 'a'},
		{Long: "file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'f'},
		{Long: "count", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["list"]) > 0 {
		fmt.Printf(" tags:\n")
		for _, t := range poolTags() {
			fmt.Printf("       %s → %s\n", t.tag, t.name)
		}
		return
	}

	all := len(options["all"]) > 0
	if len(options["help"]) > 0 || (0 == len(arguments) && !all) || 1 != len(options["file"]) {
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--ascii] [--colour] [--count=N] --file=DIR (--all | tag [key-prefix]) [--list]", program)
	}

	earlyStop := len(options["early"]) > 0
	colour := len(options["colour"]) > 0
	ascii := len(options["ascii"]) > 0
	verbose := len(options["verbose"]) > 0

	count := 10
	if len(options["count"]) > 0 {
		count, err = strconv.Atoi(options["count"][0])
		if nil != err {
			exitwithstatus.Message("%s: convert count error: %s", program, err)
		}
		if count < 1 {
			exitwithstatus.Message("%s: invalid count: %d", program, count)
		}
	}

	filename := options["file"][0]

	logging := logger.Configuration{
		Directory: ".",
		File:      "ledger-dump.log",
		Size:      1048576,
		Count:     10,
		Console:   true,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	if err = logger.Initialise(logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	store, err := storage.Open(filename, storage.ReadOnly)
	if nil != err {
		exitwithstatus.Message("%s: storage setup failed with error: %s", program, err)
	}
	defer store.Close()

	out := printer{
		ascii: ascii,
	}
	if colour {
		out.ck1 = keyColour1
		out.ck2 = keyColour2
		out.cv1 = valColour1
		out.cv2 = valColour2
		out.ce = endColour
	}

	if all {
		if verbose {
			fmt.Printf("read all records from: %q\n", filename)
		}
		i := 0
		err := store.Dump(func(key []byte, value []byte) error {
			out.element(i, key, value)
			i += 1
			return nil
		})
		if nil != err {
			exitwithstatus.Message("%s: error on Dump: %s", program, err)
		}
		return
	}

	tag := arguments[0]
	if verbose {
		fmt.Printf("read tag: %s from: %q\n", tag, filename)
	}

	prefix := []byte(nil)
	if len(arguments) > 1 {
		prefix, err = hex.DecodeString(arguments[1])
		if nil != err {
			exitwithstatus.Message("%s: convert prefix error: %s", program, err)
		}
	}

	p := poolByTag(&store.Pool, tag)
	if nil == p {
		exitwithstatus.Message("%s: no pool corresponding to: %q", program, tag)
	}

	cursor := p.NewFetchCursor()
	if len(prefix) > 0 {
		cursor.Seek(prefix)
	}

	data, err := cursor.Fetch(count)
	if nil != err {
		exitwithstatus.Message("%s: error on Fetch: %s", program, err)
	}

	l := len(prefix)

print_loop:
	for i, e := range data {
		if earlyStop && len(e.Key) >= l && !bytes.Equal(prefix, e.Key[:l]) {
			fmt.Printf("*** early stop\n")
			break print_loop
		}
		out.element(i, e.Key, e.Value)
	}
}

type poolTag struct {
	tag  string
	name string
}

// the prefix tags of every storage pool
func poolTags() []poolTag {
	// this will be a struct type
	poolType := reflect.TypeOf(storage.Store{}.Pool)

	tags := make([]poolTag, 0, poolType.NumField())
	for i := 0; i < poolType.NumField(); i += 1 {
		fieldInfo := poolType.Field(i)
		tags = append(tags, poolTag{
			tag:  fieldInfo.Tag.Get("prefix"),
			name: fieldInfo.Name,
		})
	}
	return tags
}

// locate the pool field carrying a prefix tag
func poolByTag(pools interface{}, tag string) *storage.PoolHandle {
	poolValue := reflect.ValueOf(pools).Elem()
	poolType := poolValue.Type()

	for i := 0; i < poolType.NumField(); i += 1 {
		if tag == poolType.Field(i).Tag.Get("prefix") {
			p, ok := poolValue.Field(i).Interface().(*storage.PoolHandle)
			if !ok {
				return nil
			}
			return p
		}
	}
	return nil
}

type printer struct {
	ascii bool
	ck1   string
	ck2   string
	cv1   string
	cv2   string
	ce    string
}

func (p printer) element(i int, key []byte, value []byte) {
	fmt.Printf("%d: %sKey: %s%x%s\n", i, p.ck1, p.ck2, key, p.ce)
	if p.ascii {
		prefix := fmt.Sprintf("%d: %sVal: %s", i, p.cv1, p.cv2)
		hexDump(prefix, p.ce, value)
	} else {
		fmt.Printf("%d: %sVal: %s%x%s\n", i, p.cv1, p.cv2, value, p.ce)
	}
}

// dump hex data on stdout
func hexDump(prefix string, suffix string, data []byte) {
	fmt.Print(formatHex(prefix, suffix, data))
}

func formatHex(prefix string, suffix string, data []byte) string {
	const bytesPerLine = 32

	var b bytes.Buffer
	for i := 0; i < len(data); i += bytesPerLine {
		fmt.Fprintf(&b, "%s%04x  ", prefix, i)
		for j := 0; j < bytesPerLine; j += 1 {
			if bytesPerLine/2 == j {
				b.WriteByte(' ')
			}
			if i+j < len(data) {
				fmt.Fprintf(&b, "%02x ", data[i+j])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" |")
		for j := 0; j < bytesPerLine && i+j < len(data); j += 1 {
			c := data[i+j]
			if c < 32 || c >= 127 {
				c = '.'
			}
			b.WriteByte(c)
		}
		fmt.Fprintf(&b, "|%s\n", suffix)
	}
	return b.String()
}
