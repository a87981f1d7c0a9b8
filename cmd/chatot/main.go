package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YakoSWG/chatot/pkg"
	"github.com/YakoSWG/chatot/pkg/batch"
	"github.com/YakoSWG/chatot/pkg/logging"
)

const version = "0.1.0"

var (
	charmapPath string
	archives    []string
	archiveDir  string
	texts       []string
	textDir     string
	jsonMode    bool
	lang        string
	newerOnly   bool
	msgenc      bool
	bestEffort  bool
	logLevel    string

	rootCmd = &cobra.Command{
		Use:     "chatot",
		Short:   "Decode and re-encode handheld game text archives",
		Version: version,
	}
)

func settings() batch.Settings {
	return batch.Settings{
		JSON:       jsonMode,
		Lang:       lang,
		Msgenc:     msgenc,
		BestEffort: bestEffort,
		NewerOnly:  newerOnly,
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&charmapPath, "charmap", "m", "", "path to the character map file (required)")
	cmd.Flags().StringSliceVarP(&archives, "archive", "b", nil, "path(s) to binary text archive(s)")
	cmd.Flags().StringVarP(&archiveDir, "archive-dir", "a", "", "directory of archives")
	cmd.Flags().StringSliceVarP(&texts, "txt", "t", nil, "path(s) to text file(s)")
	cmd.Flags().StringVarP(&textDir, "text-dir", "d", "", "directory of text files")
	cmd.Flags().BoolVarP(&jsonMode, "json", "j", false, "use the JSON document form")
	cmd.Flags().StringVarP(&lang, "lang", "l", "en_US", "language code for JSON documents")
	cmd.Flags().BoolVarP(&newerOnly, "newer", "n", false, "process only files newer than existing outputs")
	cmd.Flags().BoolVar(&msgenc, "msgenc", false, "render escape sequences in msgenc format")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "substitute placeholders for unmappable input instead of failing")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error; json:<level> for JSON logs)")

	if err := cmd.MarkFlagRequired("charmap"); err != nil {
		panic(err)
	}
	cmd.MarkFlagsMutuallyExclusive("archive", "archive-dir")
	cmd.MarkFlagsMutuallyExclusive("txt", "text-dir")
	cmd.MarkFlagsMutuallyExclusive("json", "msgenc")
}

func init() {
	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decrypt and decode binary text archives to text files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archiveDir != "" && len(texts) > 0 {
				return errors.New("cannot use an archive directory with explicit text file outputs")
			}
			logger := logging.New("chatot", logLevel)
			return pkg.DecodeArchives(charmapPath,
				pkg.FileSet{Files: archives, Dir: archiveDir},
				pkg.FileSet{Files: texts, Dir: textDir},
				settings(), logger)
		},
	}
	addCommonFlags(decodeCmd)

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode and encrypt text files to binary text archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			if textDir != "" && len(archives) > 0 {
				return errors.New("cannot use a text directory with explicit archive file outputs")
			}
			logger := logging.New("chatot", logLevel)
			return pkg.EncodeTexts(charmapPath,
				pkg.FileSet{Files: texts, Dir: textDir},
				pkg.FileSet{Files: archives, Dir: archiveDir},
				settings(), logger)
		},
	}
	addCommonFlags(encodeCmd)

	formatCmd := &cobra.Command{
		Use:   "format",
		Short: "Re-wrap message lines to the game's text box width",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("format is not yet implemented")
		},
	}

	rootCmd.AddCommand(decodeCmd, encodeCmd, formatCmd)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
