package querycache

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure"
	"github.com/spf13/cast"

	"github.com/brahmand-sql/cyphersql/cyphererr"
)

// placeholderRe matches a `$name` bind parameter token in generated
// template SQL, the same token expression.Parameter.String() produces.
var placeholderRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// Substitute replaces every `$name` placeholder in template with its
// literal SQL rendering of params[name], per §4.8/§9's "substitution is a
// textual step after cache lookup and before dispatch". A placeholder with
// no matching entry in params fails with ErrParameterMissing.
func Substitute(template string, params map[string]interface{}) (string, error) {
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(template, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		name := tok[1:]
		v, ok := params[name]
		if !ok {
			firstErr = cyphererr.ErrParameterMissing.New(name)
			return tok
		}
		lit, err := literalFor(v)
		if err != nil {
			firstErr = err
			return tok
		}
		return lit
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// literalFor renders v as target-SQL literal text, using cast to coerce
// through Go's dynamic parameter types (a decoded JSON number, a driver
// value, ...) into the concrete shape each branch needs.
func literalFor(v interface{}) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case time.Time:
		return quoteLiteral(val.UTC().Format("2006-01-02 15:04:05.000")), nil
	case string:
		return quoteLiteral(val), nil
	case float32, float64:
		return fmt.Sprintf("%v", val), nil
	}

	if i, err := cast.ToInt64E(v); err == nil {
		return fmt.Sprintf("%d", i), nil
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return fmt.Sprintf("%v", f), nil
	}
	if s, err := cast.ToStringE(v); err == nil {
		return quoteLiteral(s), nil
	}
	return "", cyphererr.ErrParameterTypeMismatch.New("", fmt.Sprintf("%T", v), "a scalar value")
}

func quoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// ParamSignature returns a stable hash of params' shape (keys and runtime
// types, not values): maps with the same keys and value types hash equal
// whatever their values. No cache in this package is keyed on it; the
// substituted-SQL cache is keyed on the full value hash (hashedParams).
func ParamSignature(params map[string]interface{}) (uint64, error) {
	shape := make(map[string]string, len(params))
	for k, v := range params {
		shape[k] = fmt.Sprintf("%T", v)
	}
	return hashstructure.Hash(shape, nil)
}

// hashedParams returns a stable hash of params' actual values, used as the
// second half of a substituted-SQL cache key (see SubstitutionCache).
func hashedParams(params map[string]interface{}) (uint64, error) {
	return hashstructure.Hash(params, nil)
}
