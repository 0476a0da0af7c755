/*
Some code in this file was copied from the go "flag" package source and
modified. That code's license is retained here:

Copyright (c) 2009 The Go Authors. All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are
met:

   * Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.
   * Redistributions in binary form must reproduce the above
copyright notice, this list of conditions and the following disclaimer
in the documentation and/or other materials provided with the
distribution.
   * Neither the name of Google Inc. nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

package cli

import (
	"fmt"
	"strings"
)

// rawValue holds the uncoerced tokens captured for one field. Coercion
// is deferred to the merge pipeline so config-file and environment
// layers apply in the right order.
type rawValue struct {
	tokens []string
	count  int // number of times the argument appeared
}

// cmdline is the result of scanning an argument vector: raw tokens per
// field, map override strings in order of appearance, the base config
// file path, and whether help was requested.
type cmdline struct {
	raw        map[string]*rawValue
	overrides  map[string][]string
	configPath string
	help       bool
	posTokens  []string
}

func newCmdline() *cmdline {
	return &cmdline{
		raw:       map[string]*rawValue{},
		overrides: map[string][]string{},
	}
}

// explicit reports whether any command-line tokens were captured for the
// named field.
func (cl *cmdline) explicit(fieldName string) bool {
	rv, ok := cl.raw[fieldName]
	return ok && rv.count > 0
}

type parser struct {
	byName      map[string]*arg
	positionals []*arg
	cl          *cmdline
	args        []string
}

func (p *parser) parse(arguments []string) error {
	p.args = arguments
	for {
		seen, err := p.parseOne()
		if err != nil {
			return err
		}
		if !seen {
			break
		}
	}
	return p.distributePositionals()
}

// looksLikeFlag reports whether a token should be treated as a flag
// rather than a value. Negative numbers pass as values, as does a bare
// "-".
func looksLikeFlag(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	if s[1] >= '0' && s[1] <= '9' || s[1] == '.' {
		return false
	}
	return true
}

func (p *parser) parseOne() (bool, error) {
	if len(p.args) == 0 {
		return false, nil
	}
	s := p.args[0]
	if !looksLikeFlag(s) {
		// A positional token. Keep scanning, options may still follow.
		p.cl.posTokens = append(p.cl.posTokens, s)
		p.args = p.args[1:]
		return true, nil
	}
	numMinuses := 1
	if s[1] == '-' {
		numMinuses++
		if len(s) == 2 { // "--" terminates the flags
			p.cl.posTokens = append(p.cl.posTokens, p.args[1:]...)
			p.args = nil
			return false, nil
		}
	}
	name := s[numMinuses:]
	if len(name) == 0 || name[0] == '-' || name[0] == '=' {
		return false, fmt.Errorf("bad flag syntax: %s", s)
	}

	// If single dash, handle each rune in the name as a separate flag,
	// except for the last one which can be handled normally since it may
	// have a following argument.
	if numMinuses == 1 {
		i := 0
		for ; i < len(name)-1; i++ {
			shortName := name[i]
			if name[i+1] == '=' {
				break
			}
			if err := p.parseOneFlag(string(shortName), false, "", false); err != nil {
				return false, err
			}
		}
		name = name[i:]
	}

	// it's a flag. does it have an argument?
	p.args = p.args[1:]
	hasValue := false
	value := ""
	for i := 1; i < len(name); i++ { // equals cannot be first
		if name[i] == '=' {
			value = name[i+1:]
			hasValue = true
			name = name[0:i]
			break
		}
	}

	if err := p.parseOneFlag(name, hasValue, value, true); err != nil {
		return false, err
	}

	return true, nil
}

func (p *parser) parseOneFlag(name string, hasValue bool, value string, canLookNext bool) error {
	a, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("flag provided but not defined: %s", name)
	}

	switch a.kind {
	case kindHelp:
		p.cl.help = true
		return nil
	case kindConfig:
		v, err := p.flagValue(name, hasValue, value, canLookNext)
		if err != nil {
			return err
		}
		p.cl.configPath = v
		return nil
	case kindOverride:
		v, err := p.flagValue(name, hasValue, value, canLookNext)
		if err != nil {
			return err
		}
		p.cl.overrides[a.field.Name] = append(p.cl.overrides[a.field.Name], v)
		return nil
	case kindMapFile:
		v, err := p.flagValue(name, hasValue, value, canLookNext)
		if err != nil {
			return err
		}
		rv := p.rawFor(a.field.Name)
		rv.tokens = []string{v}
		rv.count++
		return nil
	}

	if a.isBool { // special case: doesn't need an arg
		rv := p.rawFor(a.field.Name)
		rv.count++
		switch {
		case name == a.negLong:
			if hasValue {
				return fmt.Errorf("flag cannot have a value: %s", name)
			}
			rv.tokens = []string{"false"}
		case hasValue:
			rv.tokens = []string{value}
		default:
			rv.tokens = []string{"true"}
		}
		return nil
	}

	if a.arity.variadic() || a.arity.Max > 1 {
		return p.parseSequenceFlag(a, name, hasValue, value, canLookNext)
	}

	// A scalar option; the last occurrence wins.
	v, err := p.flagValue(name, hasValue, value, canLookNext)
	if err != nil {
		return err
	}
	rv := p.rawFor(a.field.Name)
	rv.tokens = []string{v}
	rv.count++
	return nil
}

// parseSequenceFlag consumes value tokens for a multi-valued option
// until the next flag-looking token. Repeated occurrences append.
func (p *parser) parseSequenceFlag(a *arg, name string, hasValue bool, value string, canLookNext bool) error {
	rv := p.rawFor(a.field.Name)
	rv.count++
	if hasValue {
		rv.tokens = append(rv.tokens, value)
		return nil
	}
	capacity := -1
	if !a.arity.variadic() {
		capacity = a.arity.Max - len(rv.tokens)
	}
	n := 0
	for canLookNext && len(p.args) > 0 && (capacity < 0 || n < capacity) {
		if looksLikeFlag(p.args[0]) {
			break
		}
		rv.tokens = append(rv.tokens, p.args[0])
		p.args = p.args[1:]
		n++
	}
	if n == 0 && len(rv.tokens) == 0 && a.arity.Min > 0 {
		return fmt.Errorf("flag needs an argument: %s", name)
	}
	return nil
}

func (p *parser) flagValue(name string, hasValue bool, value string, canLookNext bool) (string, error) {
	// It must have a value, which might be the next argument.
	if !hasValue && len(p.args) > 0 && canLookNext {
		// value is the next arg
		hasValue = true
		value, p.args = p.args[0], p.args[1:]
	}
	if !hasValue {
		return "", fmt.Errorf("flag needs an argument: %s", name)
	}
	return value, nil
}

// distributePositionals assigns the collected positional tokens to
// positional arguments in declaration order. Fixed-arity positionals
// take their exact count, bounded-optional positionals take extra
// tokens only while later positionals stay satisfiable, and a trailing
// variadic takes whatever remains.
func (p *parser) distributePositionals() error {
	tokens := p.cl.posTokens
	minAfter := make([]int, len(p.positionals)+1)
	for i := len(p.positionals) - 1; i >= 0; i-- {
		minAfter[i] = minAfter[i+1] + p.positionals[i].arity.Min
	}

	for i, a := range p.positionals {
		need := a.arity.Min
		rest := minAfter[i+1]
		if len(tokens) < need {
			return fmt.Errorf("missing required argument: %s", a.metavar)
		}
		take := need
		switch {
		case a.arity.variadic():
			take = len(tokens) - rest
		case a.arity.Max > need:
			extra := a.arity.Max - need
			if avail := len(tokens) - need - rest; extra > avail {
				extra = avail
			}
			if extra > 0 {
				take = need + extra
			}
		}
		if take > 0 {
			rv := p.rawFor(a.field.Name)
			rv.tokens = append(rv.tokens, tokens[:take]...)
			rv.count++
			tokens = tokens[take:]
		}
	}
	if len(tokens) > 0 {
		return fmt.Errorf("unrecognized arguments: %s", strings.Join(tokens, " "))
	}
	return nil
}

func (p *parser) rawFor(fieldName string) *rawValue {
	rv, ok := p.cl.raw[fieldName]
	if !ok {
		rv = &rawValue{}
		p.cl.raw[fieldName] = rv
	}
	return rv
}
