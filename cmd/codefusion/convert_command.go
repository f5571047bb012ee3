package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codefusion/internal/render"
	"codefusion/internal/workbench"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceLang  string
		targetLang  string
		code        string
		file        string
		copyResult  bool
		downloadDir string
		htmlPath    string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert code from one language to another",
		Long: "Convert code from one language to another.\n\n" +
			"Code is taken from --code, --file or standard input. Languages are\n" +
			"c, cpp, java, js and python; other codes are passed through unhighlighted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := render.New()
			sess, err := ctx.newSession(cmd, workbench.FlowConverter, renderer, downloadDir)
			if err != nil {
				return err
			}

			sess.SelectLanguages(sourceLang, targetLang)
			if err := loadInput(cmd, sess, code, file); err != nil {
				return err
			}

			st, err := sess.Dispatch(cmd.Context())
			if err != nil {
				return dispatchError(st, err)
			}

			if err := printCode(cmd, st.Output); err != nil {
				return err
			}
			if htmlPath != "" {
				if err := writeHTMLDocument(htmlPath, "Converted code", st.Output.HTML, renderer); err != nil {
					return err
				}
			}
			if copyResult {
				if err := sess.Copy(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("download") {
				if _, err := sess.Download(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceLang, "from", "f", "", "Source language")
	cmd.Flags().StringVarP(&targetLang, "to", "t", "", "Target language")
	cmd.Flags().StringVar(&code, "code", "", "Code to convert")
	cmd.Flags().StringVar(&file, "file", "", "File to convert, replaces --code")
	cmd.Flags().BoolVar(&copyResult, "copy", false, "Copy the converted code to the clipboard")
	cmd.Flags().StringVar(&downloadDir, "download", "", "Save the result as converted.<ext> in this directory")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write the highlighted result as an HTML page")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func printCode(cmd *cobra.Command, out *workbench.Output) error {
	w := cmd.OutOrStdout()
	if writerIsTerminal(w) {
		if err := render.Terminal(w, out.Raw, out.Grammar.String()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, out.Raw)
	return err
}
