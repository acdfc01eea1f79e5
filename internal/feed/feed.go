// Copyright 2024-2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Sink receives parsed values.
type Sink interface {
	Add(x float64)
}

// GapSink is a Sink that also understands breaks in the series.
type GapSink interface {
	Sink
	AddGap()
}

// Result counts what Feed did with its input.
type Result struct {
	Lines   int
	Values  int
	Gaps    int
	Invalid int
}

type Parser struct {
	logger    *zap.Logger
	gapTokens map[string]bool
	maxErrors int
}

type Option func(p *Parser)

// WithGapTokens replaces the tokens that mark a gap in the series.
func WithGapTokens(tokens ...string) Option {
	return func(p *Parser) {
		p.gapTokens = make(map[string]bool, len(tokens))
		for _, t := range tokens {
			p.gapTokens[strings.ToLower(t)] = true
		}
	}
}

// WithMaxErrors stops parsing once more than n tokens failed to parse.
// Zero means no limit.
func WithMaxErrors(n int) Option {
	return func(p *Parser) {
		p.maxErrors = n
	}
}

// NewParser returns a parser for whitespace or comma separated numbers,
// one or more per line. Text after '#' is ignored. A nil logger is
// replaced with a no-op one.
func NewParser(logger *zap.Logger, options ...Option) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{
		logger:    logger,
		gapTokens: map[string]bool{"-": true, "nan": true, "na": true, "null": true},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Feed parses r and hands every value to sink. Gap tokens are passed on
// when sink is a GapSink and dropped otherwise. Unparsable tokens are
// skipped and returned together as one error after the input is drained.
func (p *Parser) Feed(ctx context.Context, r io.Reader, sink Sink) (Result, error) {
	var res Result
	var errs *multierror.Error

	gapSink, handlesGaps := sink.(GapSink)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Lines++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, tok := range strings.FieldsFunc(line, isSeparator) {
			if p.gapTokens[strings.ToLower(tok)] {
				res.Gaps++
				if handlesGaps {
					gapSink.AddGap()
				}
				continue
			}
			x, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				res.Invalid++
				p.logger.Debug("Skipping invalid value", zap.Int("line", res.Lines), zap.String("token", tok))
				errs = multierror.Append(errs, fmt.Errorf("line %d: %w", res.Lines, err))
				if p.maxErrors > 0 && res.Invalid > p.maxErrors {
					return res, fmt.Errorf("too many invalid values: %w", errs.ErrorOrNil())
				}
				continue
			}
			sink.Add(x)
			res.Values++
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if res.Invalid > 0 {
		p.logger.Warn("Invalid values skipped", zap.Int("invalid", res.Invalid), zap.Int("values", res.Values))
	}
	return res, errs.ErrorOrNil()
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\r'
}
