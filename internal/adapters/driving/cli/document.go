package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/railkm/internal/core/domain"
)

var (
	addBy          string
	addClass       string
	addDescription string
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a document to the corpus and index it",
	Long: `Copies a PDF or text file into the corpus directory, writes its
metadata sidecar and indexes it. A document with the same name is replaced.

Example:
  railkm add ~/Downloads/PM_63_2019.pdf --by dishub --class regulation \
    --description "Standar pelayanan minimum angkutan kereta"`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove [filename]",
	Short: "Remove a document from the index and the corpus",
	Long: `Removes a document's chunks from the index and deletes the file and
its metadata sidecar from the corpus directory.

Use 'railkm --delete <filename>' to drop a document from the index only.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

var reviseCmd = &cobra.Command{
	Use:   "revise [chunk-id] [text]",
	Short: "Replace the text of an indexed chunk",
	Long: `Replaces the text of every chunk carrying chunk-id and re-embeds it.
The chunk keeps its source, locator and sidecar metadata.

Example:
  railkm revise "uu_23_2007.pdf#12" "Pasal 35 ayat (1) ..."`,
	Args:        cobra.MinimumNArgs(2),
	Annotations: map[string]string{annotationServices: needsProviders},
	RunE:        runRevise,
}

func init() {
	addCmd.Flags().StringVar(&addBy, "by", "", "who uploaded the document")
	addCmd.Flags().StringVar(&addClass, "class", "", "document class (e.g. regulation)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "short description of the document")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(reviseCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	meta := domain.DocumentMetadata{
		UploadBy:      addBy,
		DocumentClass: addClass,
		Description:   addDescription,
	}

	report, err := indexService.AddDocument(cmd.Context(), args[0], meta)
	if err != nil {
		return fmt.Errorf("adding document: %w", err)
	}

	cmd.Printf("Added %s (%d chunks).\n", filepath.Base(args[0]), report.Indexed)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	filename := args[0]
	if err := indexService.RemoveDocument(cmd.Context(), filename); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}

	cmd.Printf("Removed %s.\n", filename)
	return nil
}

func runRevise(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	chunkID := args[0]
	text := strings.Join(args[1:], " ")

	err := indexService.ReviseChunk(cmd.Context(), chunkID, text)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("chunk %s is not indexed", chunkID)
	}
	if err != nil {
		return fmt.Errorf("revising chunk: %w", err)
	}

	cmd.Printf("Revised chunk %s.\n", chunkID)
	return nil
}
