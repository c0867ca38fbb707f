// Package facts normalizes raw page facts into a fully populated PageFacts.
// It is the trust boundary between the page adapter and the scoring pipeline.
package facts

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/jonathan/geo-visibility/internal/types"
)

// DefaultTitle replaces a missing or empty page title.
const DefaultTitle = "Untitled"

// Sanitize returns a PageFacts with a type-correct value in every field.
// It never fails and never modifies raw.
func Sanitize(raw types.RawPageFacts) types.PageFacts {
	title := stringValue(raw["title"])
	if title == "" {
		title = DefaultTitle
	}

	return types.PageFacts{
		URL:              stringValue(raw["url"]),
		Title:            title,
		Description:      stringValue(raw["description"]),
		TextContent:      stringValue(raw["textContent"]),
		Headings:         stringSlice(raw["headings"]),
		Links:            stringSlice(raw["links"]),
		MetaTags:         stringMap(raw["metaTags"]),
		HasFAQ:           Truthy(raw["hasFAQ"]),
		HasTestimonials:  Truthy(raw["hasTestimonials"]),
		HasPricing:       Truthy(raw["hasPricing"]),
		HasAbout:         Truthy(raw["hasAbout"]),
		HasBlog:          Truthy(raw["hasBlog"]),
		HasComparisons:   Truthy(raw["hasComparisons"]),
		HasDocumentation: Truthy(raw["hasDocumentation"]),
		HasUseCases:      Truthy(raw["hasUseCases"]),
	}
}

// Truthy follows loose truthiness: nil, false, zero, NaN and "" are false;
// non-empty strings, non-zero numbers, slices and maps are true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	}
	// slices, maps, structs and everything else count as objects
	return true
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringSlice keeps only the string elements of a slice.
func stringSlice(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []string:
		out = append(out, x...)
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// stringMap accepts a string or decoded-JSON map and stringifies its values.
func stringMap(v any) map[string]string {
	out := map[string]string{}
	switch x := v.(type) {
	case map[string]string:
		for k, val := range x {
			out[k] = val
		}
	case map[string]any:
		for k, val := range x {
			switch s := val.(type) {
			case string:
				out[k] = s
			case nil:
				out[k] = ""
			default:
				out[k] = fmt.Sprint(s)
			}
		}
	}
	return out
}
