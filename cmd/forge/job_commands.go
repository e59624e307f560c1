package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dadolfin1208/signalforge/internal/dto"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Submit analysis jobs",
	}
	cmd.AddCommand(newMixCommand(ctx))
	cmd.AddCommand(newMasterCommand(ctx))
	cmd.AddCommand(newSeparateCommand(ctx))
	return cmd
}

func newMixCommand(ctx *commandContext) *cobra.Command {
	var (
		project string
		req     dto.MixingAnalysisRequest
	)

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Request a mixing analysis of a track",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			if err := requireTrack(req.TrackName); err != nil {
				return err
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := api.SubmitMixing(cmd.Context(), projectID, &req)
			if err != nil {
				return err
			}
			return printJob(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	cmd.Flags().StringVar(&req.TrackName, "track", "", "Track name")
	cmd.Flags().StringVar(&req.AnalysisType, "type", "single_track", "single_track or full_mix")
	cmd.Flags().StringVar(&req.StemType, "stem", "", "Stem type, e.g. vocals")
	cmd.Flags().StringVar(&req.FileURL, "file", "", "URL of the audio to analyze")
	return cmd
}

func newMasterCommand(ctx *commandContext) *cobra.Command {
	var (
		project  string
		presetID string
		req      dto.MasteringAnalysisRequest
	)

	cmd := &cobra.Command{
		Use:   "master",
		Short: "Request a mastering analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			if err := requireTrack(req.TrackName); err != nil {
				return err
			}
			if presetID = strings.TrimSpace(presetID); presetID != "" {
				id, err := uuid.Parse(presetID)
				if err != nil {
					return fmt.Errorf("invalid preset id %q", presetID)
				}
				req.PresetID = &id
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := api.SubmitMastering(cmd.Context(), projectID, &req)
			if err != nil {
				return err
			}
			return printJob(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	cmd.Flags().StringVar(&req.TrackName, "track", "", "Track name")
	cmd.Flags().StringVar(&req.MasteringType, "type", "stereo", "stereo or stem")
	cmd.Flags().StringVar(&req.StemType, "stem", "", "Stem type when --type=stem")
	cmd.Flags().StringVar(&req.PresetName, "preset", "", "Mastering preset name")
	cmd.Flags().StringVar(&presetID, "preset-id", "", "Saved preset ID")
	return cmd
}

func newSeparateCommand(ctx *commandContext) *cobra.Command {
	var (
		project string
		req     dto.StemSeparationRequest
	)

	cmd := &cobra.Command{
		Use:   "separate",
		Short: "Split a mixed track into stems",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(project)
			if err != nil {
				return err
			}
			if err := requireTrack(req.TrackName); err != nil {
				return err
			}
			if strings.TrimSpace(req.SourceFileURL) == "" {
				return errors.New("--source is required")
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := api.SubmitSeparation(cmd.Context(), projectID, &req)
			if err != nil {
				return err
			}
			return printJob(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")
	cmd.Flags().StringVar(&req.TrackName, "track", "", "Track name")
	cmd.Flags().StringVar(&req.SourceFileURL, "source", "", "URL of the mixed audio")
	return cmd
}

func requireTrack(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("--track is required")
	}
	return nil
}

func printJob(out io.Writer, resp *dto.JobResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
