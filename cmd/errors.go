package cmd

import (
	"context"
	"net/http"

	"github.com/jsphweid/loopgen/model"
	"github.com/pkg/errors"
)

// describe adds a hint to request errors the user can fix.
func describe(err error) error {
	var genreErr *model.UnknownGenreError
	var styleErr *model.UnknownStyleError
	var noVoices *model.NoVoicesSelectedError
	switch {
	case errors.As(err, &genreErr):
		return errors.Wrap(err, "run `loopgen list` to see available genres")
	case errors.As(err, &styleErr):
		return errors.Wrap(err, "run `loopgen list` to see styles per genre")
	case errors.As(err, &noVoices):
		return errors.Wrap(err, "check the sample folders for this genre")
	}
	return err
}

func statusFor(err error) int {
	var genreErr *model.UnknownGenreError
	var styleErr *model.UnknownStyleError
	var noVoices *model.NoVoicesSelectedError
	switch {
	case errors.As(err, &genreErr), errors.As(err, &styleErr):
		return http.StatusNotFound
	case errors.As(err, &noVoices):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
