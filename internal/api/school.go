package api

import (
	"context"
	"fmt"

	"github.com/nhle/school-dashboard/internal/model"
)

// List endpoints for the portal's roster pages. Each decodes exactly
// one response schema; there is no shape guessing at this boundary.

type studentsResponse struct {
	Students []model.Student `json:"students"`
}

type teachersResponse struct {
	Teachers []model.Teacher `json:"teachers"`
}

type classesResponse struct {
	Classes []model.Class `json:"classes"`
}

type assignmentsResponse struct {
	Assignments []model.Assignment `json:"assignments"`
}

type testsResponse struct {
	Tests []model.TestSummary `json:"tests"`
}

// ListStudents fetches the student roster.
func (c *Client) ListStudents(ctx context.Context) ([]model.Student, error) {
	var resp studentsResponse
	if err := c.Get(ctx, "/students", &resp); err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return resp.Students, nil
}

// ListTeachers fetches the staff list.
func (c *Client) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	var resp teachersResponse
	if err := c.Get(ctx, "/teachers", &resp); err != nil {
		return nil, fmt.Errorf("listing teachers: %w", err)
	}
	return resp.Teachers, nil
}

// ListClasses fetches the caller's classes.
func (c *Client) ListClasses(ctx context.Context) ([]model.Class, error) {
	var resp classesResponse
	if err := c.Get(ctx, "/classes", &resp); err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	return resp.Classes, nil
}

// ListAssignments fetches the assignments visible to the caller.
func (c *Client) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	var resp assignmentsResponse
	if err := c.Get(ctx, "/assignments", &resp); err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	return resp.Assignments, nil
}

// ListTests fetches the published online tests for the caller.
func (c *Client) ListTests(ctx context.Context) ([]model.TestSummary, error) {
	var resp testsResponse
	if err := c.Get(ctx, "/tests", &resp); err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}
	return resp.Tests, nil
}
