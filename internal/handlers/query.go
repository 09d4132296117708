package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/validation"
	"github.com/go-playground/validator/v10"
)

const (
	// filterParamPrefix marks a filter group selection, e.g. filter.topic=ai,design
	filterParamPrefix = "filter."
	// MaxCardLimit bounds the limit query parameter
	MaxCardLimit = 1000
)

// CardsQuery is the parsed query string of a cards request
type CardsQuery struct {
	Filters    models.FilterDirective
	Panels     []string
	Logic      models.FilterType `validate:"omitempty,filter_logic"`
	Sort       models.SortOption `validate:"omitempty,sort_option"`
	Query      string            `validate:"max=200"`
	Fields     []string          `validate:"dive,min=1,max=64"`
	Bookmarked bool
	Registered bool
	Limit      int `validate:"gte=0,lte=1000"`
}

// ParseCardsQuery reads a cards request's query string
func ParseCardsQuery(values url.Values) (*CardsQuery, error) {
	q := &CardsQuery{
		Filters: models.FilterDirective{},
		Panels:  splitList(values.Get("panels")),
		Logic:   models.FilterType(strings.TrimSpace(values.Get("logic"))),
		Sort:    models.SortOption(strings.TrimSpace(values.Get("sort"))),
		Query:   values.Get("q"),
		Fields:  splitList(values.Get("fields")),
	}

	for key, vals := range values {
		group, ok := strings.CutPrefix(key, filterParamPrefix)
		if !ok {
			continue
		}
		if group == "" {
			return nil, models.NewConfigurationError("filter group key", key, "must not be empty")
		}
		var selected []string
		for _, v := range vals {
			selected = append(selected, splitList(v)...)
		}
		q.Filters[group] = selected
	}

	var err error
	if q.Bookmarked, err = parseBool(values, "bookmarked"); err != nil {
		return nil, err
	}
	if q.Registered, err = parseBool(values, "registered"); err != nil {
		return nil, err
	}
	if raw := values.Get("limit"); raw != "" {
		q.Limit, err = strconv.Atoi(raw)
		if err != nil {
			return nil, models.NewConfigurationError("limit", raw, "must be an integer")
		}
	}

	if err := validation.Validate.Struct(q); err != nil {
		return nil, toConfigurationError(err)
	}
	return q, nil
}

func parseBool(values url.Values, key string) (bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, models.NewConfigurationError(key, raw, "must be a boolean")
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toConfigurationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return models.NewConfigurationError(strings.ToLower(fe.Field()), fmt.Sprint(fe.Value()), "failed "+fe.Tag()+" validation")
	}
	return models.NewConfigurationError("query", "", err.Error())
}
