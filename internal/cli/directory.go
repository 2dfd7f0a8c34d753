package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dkurov/campdir/internal/directory"
	"github.com/dkurov/campdir/internal/graphql"
)

// List prints all directory listings.
func (a *App) List(ctx context.Context) error {
	items, err := a.directory.List(ctx)
	if err != nil {
		reportAPIError(err)
		return err
	}

	if len(items) == 0 {
		printlnFn("No listings yet.")
		return nil
	}

	for _, b := range items {
		printlnFn(fmt.Sprintf("%s  %s [%s]", b.ID, b.Name, b.Category))
	}
	return nil
}

// Show prompts for a listing id and prints its details.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter listing id", os.Stdout)
	if err != nil {
		return err
	}

	b, err := a.directory.Get(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			printlnFn("No listing with id", id)
			return err
		}
		reportAPIError(err)
		return err
	}

	printlnFn(fmt.Sprintf("%s [%s]", b.Name, b.Category))
	if b.Description != "" {
		printlnFn(b.Description)
	}
	printlnFn("id:", b.ID)
	return nil
}

// Add prompts for the new listing fields and creates it.
func (a *App) Add(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Business name", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	input := directory.CreateBusinessInput{
		Name:        name,
		Category:    category,
		Description: description,
	}
	b, err := a.directory.Create(ctx, input)
	if err != nil {
		reportAPIError(err)
		return err
	}

	printlnFn("Created listing", b.Name, "with id", b.ID)
	return nil
}

// reportAPIError prints a user-facing message for a failed API call,
// pointing at the session when authentication is the problem.
func reportAPIError(err error) {
	if errors.Is(err, graphql.ErrUnauthenticated) {
		printlnFn("You need to sign in first.")
		return
	}
	printlnFn("Request failed:", err.Error())
}
