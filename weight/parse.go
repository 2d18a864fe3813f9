// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package weight

import (
	"strconv"
	"strings"

	"github.com/ballast-fi/robo-advisor/fault"
)

// digits of a percentage below the decimal point that a Weight can hold
const fractionDigits = 6

// Parse - a percentage such as "60", "12.5%" or "33.333333" as a
// Weight, the reverse of String
func Parse(s string) (Weight, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if "" == s {
		return 0, fault.ErrInvalidWeight
	}

	whole, frac := s, ""
	if n := strings.IndexByte(s, '.'); n >= 0 {
		whole, frac = s[:n], s[n+1:]
	}
	if "" == whole || len(frac) > fractionDigits {
		return 0, fault.ErrInvalidWeight
	}
	frac += strings.Repeat("0", fractionDigits-len(frac))

	w, err := strconv.ParseUint(whole, 10, 64)
	if nil != err || w > 100 {
		return 0, fault.ErrInvalidWeight
	}
	f, err := strconv.ParseUint(frac, 10, 64)
	if nil != err {
		return 0, fault.ErrInvalidWeight
	}

	result := Weight(w*uint64(Denominator)/100 + f)
	if err := result.Validate(); nil != err {
		return 0, err
	}
	return result, nil
}

// ParseList - comma separated percentages
func ParseList(s string) ([]Weight, error) {
	if "" == strings.TrimSpace(s) {
		return nil, nil
	}
	items := strings.Split(s, ",")
	weights := make([]Weight, len(items))
	for i, item := range items {
		w, err := Parse(item)
		if nil != err {
			return nil, err
		}
		weights[i] = w
	}
	return weights, nil
}
