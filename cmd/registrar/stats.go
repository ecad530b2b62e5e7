package main

import (
	"github.com/spf13/cobra"
)

var statsFiles []string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print registry statistics, courses and students after loading files",
	Long: `Load the given files and print statistics followed by every course and student.

Examples:
  registrar stats --file seed.txt
  registrar stats -f students.txt -f courses.txt -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := newRegistry()
		importer := newImporter(reg)
		for _, path := range statsFiles {
			if _, err := importer.LoadFile(cmd.Context(), path); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if err := printStatistics(out, reg.Statistics()); err != nil {
			return err
		}
		if err := printCourses(out, reg.Courses()); err != nil {
			return err
		}
		if err := printStudents(out, reg.Students()); err != nil {
			return err
		}
		for _, problem := range reg.Inconsistencies() {
			cmd.PrintErrf("inconsistency: %s\n", problem)
		}
		return printRecent(out, reg)
	},
}

func init() {
	statsCmd.Flags().StringArrayVarP(&statsFiles, "file", "f", nil, "registry file to load (repeatable)")
	rootCmd.AddCommand(statsCmd)
}
