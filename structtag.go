package cli

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

func parseStructTagInner(tagInner string) map[string]string {
	ret := map[string]string{}

	key := strings.Builder{}
	val := strings.Builder{}
	inKey := true
	inQuote := false
	for _, c := range tagInner {
		if inKey {
			switch c {
			case ',':
				ret[key.String()] = ""
				key.Reset()
			case '=':
				inKey = false
			case ' ':
				break
			default:
				key.WriteRune(c)
			}
		} else if inQuote {
			switch c {
			case '\'':
				inQuote = false
			default:
				val.WriteRune(c)
			}
		} else {
			switch c {
			case ',':
				ret[key.String()] = val.String()
				key.Reset()
				val.Reset()
				inKey = true
			case '\'':
				inQuote = true
			default:
				val.WriteRune(c)
			}
		}
	}
	if key.Len() > 0 {
		ret[key.String()] = val.String()
	}

	return ret
}

// parseTagMeta translates a `cli:"..."` struct tag into a metadata bag.
// The bool result reports whether the tag was present at all.
func parseTagMeta(tag reflect.StructTag) (Meta, bool, error) {
	inner, ok := tag.Lookup("cli")
	if !ok {
		return Meta{}, false, nil
	}

	var metas []Meta
	m := parseStructTagInner(inner)
	pop := func(key string) (string, bool) {
		val, ok := m[key]
		if ok {
			delete(m, key)
		}
		return val, ok
	}

	if _, ok := pop("-"); ok {
		metas = append(metas, Excluded())
	}
	if _, ok := pop("include"); ok {
		metas = append(metas, Included())
	}
	if name, ok := pop("name"); ok {
		metas = append(metas, Name(name))
	}
	if short, ok := pop("short"); ok {
		if utf8.RuneCountInString(short) != 1 {
			return Meta{}, true, fmt.Errorf("short name must be 1 letter")
		}
		r, _ := utf8.DecodeRuneInString(short)
		metas = append(metas, Short(r))
	}
	if help, ok := pop("help"); ok {
		metas = append(metas, Help(help))
	}
	if placeholder, ok := pop("placeholder"); ok {
		metas = append(metas, Placeholder(placeholder))
	}
	if metavar, ok := pop("metavar"); ok {
		metas = append(metas, Metavar(metavar))
	}
	if env, ok := pop("env"); ok {
		metas = append(metas, Env(env))
	}
	if def, ok := pop("default"); ok {
		metas = append(metas, Default(def))
	}
	if _, ok := pop("nodefault"); ok {
		metas = append(metas, Meta{hideDefault: true})
	}
	if choices, ok := pop("choices"); ok {
		vals := strings.Split(choices, ",")
		for i := range vals {
			vals[i] = strings.TrimSpace(vals[i])
		}
		metas = append(metas, Choices(vals...))
	}
	if _, ok := pop("positional"); ok {
		metas = append(metas, Positional())
	}
	if nargs, ok := pop("nargs"); ok {
		arity, err := parseNargs(nargs)
		if err != nil {
			return Meta{}, true, err
		}
		metas = append(metas, Meta{set: attrArity, arity: arity})
	}
	if _, ok := pop("fileload"); ok {
		metas = append(metas, FileLoadable())
	}
	if _, ok := pop("required"); ok {
		metas = append(metas, Required())
	}
	if _, ok := pop("hidden"); ok {
		metas = append(metas, Hidden())
	}

	if len(m) > 0 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Meta{}, true, fmt.Errorf("unknown tags: %s", strings.Join(keys, ", "))
	}

	return Combine(metas...), true, nil
}

func parseNargs(s string) (Arity, error) {
	switch s {
	case "?":
		return ZeroOrOne, nil
	case "*":
		return ZeroOrMore, nil
	case "+":
		return OneOrMore, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return Arity{}, fmt.Errorf("invalid nargs %q (want ?, *, +, or a positive count)", s)
	}
	return Exactly(n), nil
}
