// Package rules loads the optional YAML file that tunes product-name
// parsing and replaces the category rule list.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/tayloree/order-catalog/internal/category"
	"github.com/tayloree/order-catalog/internal/names"
)

// File is the rules file layout. Every section is optional.
type File struct {
	VariantPolicy     string          `yaml:"variant_policy" validate:"omitempty,oneof=fold-non-flavor fold-always never-fold"`
	AccessoryPrefixes []string        `yaml:"accessory_prefixes" validate:"dive,required"`
	NeutralMarkers    []string        `yaml:"neutral_markers" validate:"dive,required"`
	SizeRules         []SizeRule      `yaml:"size_rules" validate:"dive"`
	ReplaceSizeRules  bool            `yaml:"replace_size_rules"`
	Categories        []category.Rule `yaml:"categories" validate:"dive"`
	Fallback          string          `yaml:"fallback"`
}

// SizeRule is a size pattern in source form.
type SizeRule struct {
	Name    string `yaml:"name" validate:"required"`
	Kind    string `yaml:"kind" validate:"omitempty,oneof=compound count weight volume apparel dimension named"`
	Pattern string `yaml:"pattern" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Load reads and validates a rules file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates rules YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate reports every problem in the file at once.
func (f *File) Validate() error {
	var errs error
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("%s %s", fieldPath(fe), validationMessage(fe)))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}

	seen := make(map[string]struct{}, len(f.SizeRules))
	for i, r := range f.SizeRules {
		if r.Pattern != "" {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("size_rules[%d] %q: bad pattern: %w", i, r.Name, err))
			}
		}
		if _, dup := seen[r.Name]; dup && r.Name != "" {
			errs = multierr.Append(errs, fmt.Errorf("size_rules[%d]: duplicate name %q", i, r.Name))
		}
		seen[r.Name] = struct{}{}
	}
	if f.ReplaceSizeRules && len(f.SizeRules) == 0 {
		errs = multierr.Append(errs, errors.New("replace_size_rules needs at least one size rule"))
	}
	return errs
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}

// ParserOptions returns the name-parser configuration the file describes.
// Extra size rules are added to the built-in table unless
// replace_size_rules is set; matching is case-insensitive.
func (f *File) ParserOptions() (names.Options, error) {
	opts := names.DefaultOptions()
	if f == nil {
		return opts, nil
	}

	policy, err := names.ParsePolicy(f.VariantPolicy)
	if err != nil {
		return opts, err
	}
	opts.Policy = policy

	if len(f.AccessoryPrefixes) > 0 {
		opts.AccessoryPrefixes = append([]string(nil), f.AccessoryPrefixes...)
	}
	if len(f.NeutralMarkers) > 0 {
		opts.NeutralMarkers = append([]string(nil), f.NeutralMarkers...)
	}

	extra := make([]names.SizeRule, 0, len(f.SizeRules))
	for _, r := range f.SizeRules {
		pattern := r.Pattern
		if !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return opts, fmt.Errorf("size rule %q: %w", r.Name, err)
		}
		kind := names.SizeKind(r.Kind)
		if kind == "" {
			kind = names.KindNamed
		}
		extra = append(extra, names.SizeRule{Name: r.Name, Kind: kind, Pattern: re})
	}
	if f.ReplaceSizeRules {
		opts.SizeRules = extra
	} else {
		opts.SizeRules = append(opts.SizeRules, extra...)
	}
	return opts, nil
}

// Parser builds the name parser the file describes.
func (f *File) Parser() (*names.Parser, error) {
	opts, err := f.ParserOptions()
	if err != nil {
		return nil, err
	}
	return names.New(opts), nil
}

// Classifier builds the category classifier. Without a categories section
// the built-in rules are used with the file's fallback.
func (f *File) Classifier() *category.Classifier {
	if f == nil {
		return category.Default()
	}
	if len(f.Categories) == 0 {
		if f.Fallback == "" {
			return category.Default()
		}
		return category.New(category.DefaultRules(), f.Fallback)
	}
	return category.New(f.Categories, f.Fallback)
}
