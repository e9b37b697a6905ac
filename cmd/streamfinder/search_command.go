package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"streamfinder/internal/discovery"
)

const welcomeBanner = `//// Welcome to the Movie-Streaming Generator \\\\`

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var req struct {
		service  string
		genre    string
		language string
		duration string
	}
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find movies by service, genre, language and duration",
		Long: `Find movies by streaming service, genre, language and duration.

Without filter flags the command walks through numbered menus, prints the
matching movies, and resolves a streaming link for the movie you pick.
With --service, --genre, --language and --duration it prints a table
(or JSON with --json) and exits.`,
		Example: `  streamfinder search
  streamfinder search --service Netflix --genre Comedy --language English --duration medium
  streamfinder search --service Hulu --genre Drama --language French --duration short --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flagged := req.service != "" || req.genre != "" || req.language != "" || req.duration != ""
			return ctx.withApp(func(a *app) error {
				if !flagged && !jsonOutput {
					return runInteractiveSearch(cmd, a.discovery)
				}
				request := discovery.Request{
					Service:  strings.TrimSpace(req.service),
					Genre:    strings.TrimSpace(req.genre),
					Language: strings.TrimSpace(req.language),
				}
				if strings.TrimSpace(req.duration) != "" {
					band, err := discovery.ParseBand(req.duration)
					if err != nil {
						return err
					}
					request.Band = band
				}
				if err := request.Validate(); err != nil {
					return err
				}
				movies, err := a.discovery.Search(cmd.Context(), request)
				if err != nil {
					return err
				}
				if jsonOutput {
					if movies == nil {
						movies = []discovery.Movie{}
					}
					return writeJSON(cmd, movies)
				}
				printMovieTable(cmd.OutOrStdout(), movies)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.service, "service", "", "Streaming service name (see 'streamfinder options')")
	cmd.Flags().StringVar(&req.genre, "genre", "", "Genre name")
	cmd.Flags().StringVar(&req.language, "language", "", "Original language name")
	cmd.Flags().StringVar(&req.duration, "duration", "", "Runtime band: short, medium or long")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printMovieTable(out io.Writer, movies []discovery.Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(out, "No films matching your criteria available.")
		return
	}
	rows := make([][]string, 0, len(movies))
	for i, movie := range movies {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(movie.ID, 10),
			movie.Title,
			movie.Year,
			movie.DirectorList(),
			fmt.Sprintf("%d min", movie.Runtime),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "TMDB ID", "Title", "Year", "Director(s)", "Runtime"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
}

// runInteractiveSearch repeats the menu-driven search until the user declines
// to search again or stdin closes.
func runInteractiveSearch(cmd *cobra.Command, svc *discovery.Service) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)
	choices := discovery.DefaultChoices()

	for {
		again, err := interactiveRound(cmd, svc, p, choices)
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func interactiveRound(cmd *cobra.Command, svc *discovery.Service, p *prompter, choices discovery.Choices) (bool, error) {
	out := p.out
	fmt.Fprintln(out, p.styles.banner.Render(welcomeBanner))
	fmt.Fprintln(out)

	i, err := p.choose("Available Streaming Services:", choices.Services, "Please enter the number of your preferred streaming service: ")
	if err != nil {
		return false, err
	}
	req := discovery.Request{Service: choices.Services[i]}
	fmt.Fprintf(out, "Your preferred streaming service is: %s\n\n", req.Service)

	if i, err = p.choose("Available Languages:", choices.Languages, "Please enter your preferred movie language: "); err != nil {
		return false, err
	}
	req.Language = choices.Languages[i]
	fmt.Fprintf(out, "Your preferred movie language is: %s\n\n", req.Language)

	if i, err = p.choose("Available Genres:", choices.Genres, "Please enter the number of your preferred movie genre: "); err != nil {
		return false, err
	}
	req.Genre = choices.Genres[i]
	fmt.Fprintf(out, "Your preferred movie genre is: %s\n\n", req.Genre)

	labels := make([]string, len(choices.Durations))
	for j, band := range choices.Durations {
		labels[j] = band.Label
	}
	if i, err = p.choose("Available Movie Durations:", labels, "Please enter the number of your preferred movie duration: "); err != nil {
		return false, err
	}
	req.Band = choices.Durations[i]
	fmt.Fprintf(out, "Your preferred movie duration is: %s\n\n", req.Band.Label)

	movies, err := svc.Search(cmd.Context(), req)
	if err != nil {
		return false, err
	}
	if len(movies) == 0 {
		return p.confirm("No films matching your criteria available. Would you like to search again? (y/n) ")
	}

	for n, movie := range movies {
		printMovie(p, n+1, movie)
	}

	for {
		answer, err := p.readLine("Please select a movie number from the list: ")
		if err != nil {
			return false, err
		}
		if _, convErr := strconv.Atoi(answer); convErr != nil {
			fmt.Fprintln(out, p.styles.warn.Render("Invalid input. Please enter a valid number."))
			continue
		}
		n, ok := parseSelection(answer, len(movies))
		if !ok {
			fmt.Fprintln(out, p.styles.warn.Render(fmt.Sprintf("Invalid input. Please enter a number between 1 and %d.", len(movies))))
			continue
		}
		selected := movies[n-1]
		link, err := svc.StreamingLink(cmd.Context(), selected.ID, selected.Service)
		if err != nil {
			return false, err
		}
		if discovery.IsAvailable(link) {
			fmt.Fprintln(out, p.styles.link.Render(link))
		} else {
			fmt.Fprintln(out, link)
		}
		another, err := p.confirm("Would you like to select another movie? (y/n) ")
		if err != nil {
			return false, err
		}
		if !another {
			break
		}
	}
	return p.confirm("Would you like to search again? (y/n) ")
}

func printMovie(p *prompter, n int, movie discovery.Movie) {
	out := p.out
	fmt.Fprintln(out, p.styles.index.Render(strconv.Itoa(n)))
	field := func(label, value string) {
		fmt.Fprintf(out, "%s %s\n", p.styles.label.Render(label+":"), value)
	}
	field("Title", p.styles.header.Render(movie.Title))
	field("Director(s)", movie.DirectorList())
	field("Runtime", fmt.Sprintf("%d min.", movie.Runtime))
	field("Genre", movie.GenreLabel())
	field("Language", movie.Language)
	field("Streaming Service", movie.Service)
	if movie.PosterURL != "" {
		field("Poster", movie.PosterURL)
	}
	field("Synopsis", movie.Overview)
	fmt.Fprintln(out)
}
