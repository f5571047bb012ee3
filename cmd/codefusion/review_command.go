package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codefusion/internal/render"
	"codefusion/internal/workbench"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var (
		code     string
		file     string
		htmlPath string
		sanitize bool
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Ask for a code review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []render.Option
			if sanitize {
				opts = append(opts, render.WithSanitize())
			}
			renderer := render.New(opts...)
			sess, err := ctx.newSession(cmd, workbench.FlowReview, renderer, "")
			if err != nil {
				return err
			}

			if err := loadInput(cmd, sess, code, file); err != nil {
				return err
			}

			st, err := sess.Dispatch(cmd.Context())
			if err != nil {
				return dispatchError(st, err)
			}

			w := cmd.OutOrStdout()
			if writerIsTerminal(w) {
				if err := render.Terminal(w, st.Output.Raw, "markdown"); err != nil {
					return err
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, st.Output.Raw)
			}

			if htmlPath != "" {
				return writeHTMLDocument(htmlPath, "Code review", st.Output.HTML, renderer)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Code to review")
	cmd.Flags().StringVar(&file, "file", "", "File to review, replaces --code")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write the rendered review as an HTML page")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "Drop raw HTML from the review when writing --html")

	return cmd
}
