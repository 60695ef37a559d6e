package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"CapeTravel/internal/core/reactions"
)

func placesCommand() *cli.Command {
	return &cli.Command{
		Name:  "places",
		Usage: "List places with their reactions",
		Action: withSurface(func(c *cli.Context, s *surface) error {
			places, err := s.api.ListPlaces(c.Context)
			if err != nil {
				return fmt.Errorf("failed to list places: %w", err)
			}

			subjects := make([]reactions.Subject, len(places))
			names := make([]string, len(places))
			for i, p := range places {
				subjects[i] = reactions.Subject{Kind: reactions.SubjectPlace, ID: strconv.FormatInt(p.ID, 10)}
				names[i] = p.Name
			}
			return s.printSubjects(c, subjects, names)
		}),
	}
}

func galleryCommand() *cli.Command {
	return &cli.Command{
		Name:  "gallery",
		Usage: "List gallery images with their reactions",
		Action: withSurface(func(c *cli.Context, s *surface) error {
			images, err := s.api.ListGallery(c.Context)
			if err != nil {
				return fmt.Errorf("failed to list gallery: %w", err)
			}

			subjects := make([]reactions.Subject, len(images))
			names := make([]string, len(images))
			for i, img := range images {
				subjects[i] = reactions.Subject{Kind: reactions.SubjectGallery, ID: strconv.FormatInt(img.ID, 10)}
				names[i] = img.ImageURL
				if img.Title != nil && *img.Title != "" {
					names[i] = *img.Title
				}
			}
			return s.printSubjects(c, subjects, names)
		}),
	}
}

func reactionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "reactions",
		Usage:     "Show reactions for subjects",
		ArgsUsage: "place:ID|gallery:ID...",
		Action: withSurface(func(c *cli.Context, s *surface) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one subject is required")
			}
			subjects := make([]reactions.Subject, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				subject, err := parseSubject(arg)
				if err != nil {
					return err
				}
				subjects = append(subjects, subject)
			}
			return s.printSubjects(c, subjects, nil)
		}),
	}
}

func voteCommand(name, usage string) *cli.Command {
	value := reactions.Like
	if name == "dislike" {
		value = reactions.Dislike
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "place:ID|gallery:ID",
		Action: withSurface(func(c *cli.Context, s *surface) error {
			if c.NArg() != 1 {
				return fmt.Errorf("exactly one subject is required")
			}
			subject, err := parseSubject(c.Args().First())
			if err != nil {
				return err
			}

			// Settle first so the prediction starts from the server's tally.
			if _, err := s.controller.LoadAggregates(c.Context, []reactions.Subject{subject}); err != nil {
				return err
			}
			agg, err := s.controller.CastVote(c.Context, subject, value)
			if err != nil {
				return fmt.Errorf("vote failed: %w", err)
			}

			if c.Bool("json") {
				return printJSON(c.App.Writer, agg)
			}
			fmt.Fprintf(c.App.Writer, "%s  likes %d  dislikes %d  mine %s\n", subject, agg.Likes, agg.Dislikes, formatMine(agg))
			return nil
		}),
	}
}

func viewportCommand() *cli.Command {
	return &cli.Command{
		Name:  "viewport",
		Usage: "Show the map view fitted over all places",
		Action: withSurface(func(c *cli.Context, s *surface) error {
			view, err := s.api.Viewport(c.Context)
			if err != nil {
				return fmt.Errorf("failed to fetch viewport: %w", err)
			}
			if c.Bool("json") || view.Bounds == nil {
				return printJSON(c.App.Writer, view)
			}
			fmt.Fprintf(c.App.Writer, "south-west %.4f,%.4f\nnorth-east %.4f,%.4f\ncenter     %.4f,%.4f\n",
				view.Bounds.SouthWest.Lat, view.Bounds.SouthWest.Lng,
				view.Bounds.NorthEast.Lat, view.Bounds.NorthEast.Lng,
				view.Center.Lat, view.Center.Lng)
			return nil
		}),
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the identity votes are recorded under",
		Action: withSurface(func(c *cli.Context, s *surface) error {
			voter := s.provider.ResolveIdentity(c.Context, s.token)
			if c.Bool("json") {
				return printJSON(c.App.Writer, voter)
			}
			fmt.Fprintln(c.App.Writer, voter.String())
			return nil
		}),
	}
}

// printSubjects loads the subjects through the controller and prints one
// row each. names may be nil.
func (s *surface) printSubjects(c *cli.Context, subjects []reactions.Subject, names []string) error {
	aggs, err := s.controller.LoadAggregates(c.Context, subjects)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		rows := make([]subjectRow, len(subjects))
		for i, subject := range subjects {
			rows[i] = subjectRow{Subject: subject, Aggregate: aggs[subject]}
			if names != nil {
				rows[i].Name = names[i]
			}
		}
		return printJSON(c.App.Writer, rows)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBJECT\tLIKES\tDISLIKES\tMINE\tNAME")
	for i, subject := range subjects {
		agg := aggs[subject]
		name := ""
		if names != nil {
			name = names[i]
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", subject, agg.Likes, agg.Dislikes, formatMine(agg), name)
	}
	return tw.Flush()
}

type subjectRow struct {
	Subject   reactions.Subject   `json:"subject"`
	Name      string              `json:"name,omitempty"`
	Aggregate reactions.Aggregate `json:"reactions"`
}

// parseSubject reads "place:ID" or "gallery:ID"
func parseSubject(raw string) (reactions.Subject, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	subject := reactions.Subject{Kind: reactions.SubjectKind(strings.ToLower(kind)), ID: id}
	if !ok {
		return reactions.Subject{}, fmt.Errorf("subject %q: want place:ID or gallery:ID", raw)
	}
	if err := subject.Validate(); err != nil {
		return reactions.Subject{}, fmt.Errorf("subject %q: %w", raw, err)
	}
	return subject, nil
}

func formatMine(agg reactions.Aggregate) string {
	if agg.Mine == nil {
		return "-"
	}
	return agg.Mine.String()
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
