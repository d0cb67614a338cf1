package hubspot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/syncline/contactsync/pkg/contacts"
	"github.com/syncline/contactsync/pkg/directory"
	"github.com/syncline/contactsync/pkg/errors"
)

// stagingProperty correlates batch-create results back to their
// operations. Creates have no remote id yet, and an operation keyed by
// phone or name may have no email either, so correlation must ride on a
// value we stamp ourselves.
const stagingProperty = "temporary_id"

// Write API wire types.

type objectInput struct {
	ID         string            `json:"id,omitempty"`
	Properties map[string]string `json:"properties"`
}

type objectResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type batchRequest struct {
	Inputs []objectInput `json:"inputs"`
}

type batchResponse struct {
	Status  string           `json:"status"`
	Results []objectResponse `json:"results"`
	Errors  []batchError     `json:"errors,omitempty"`
}

type batchError struct {
	Status   string              `json:"status"`
	Category string              `json:"category"`
	Message  string              `json:"message"`
	Context  map[string][]string `json:"context,omitempty"`
}

func (c *Client) objectsURL() string {
	return c.baseURL + "/crm/v3/objects/contacts"
}

// Create implements directory.Directory.
func (c *Client) Create(ctx context.Context, properties map[string]string) (contacts.RemoteID, error) {
	var resp objectResponse
	err := c.http.PostJSON(ctx, c.objectsURL(), objectInput{Properties: properties}, &resp)
	if err != nil {
		return "", err
	}
	return contacts.RemoteID(resp.ID), nil
}

// Update implements directory.Directory.
func (c *Client) Update(ctx context.Context, id contacts.RemoteID, properties map[string]string) error {
	url := fmt.Sprintf("%s/%s", c.objectsURL(), id)
	return c.http.PatchJSON(ctx, url, objectInput{Properties: properties}, nil)
}

// BatchSubmit implements directory.Directory. The batch endpoints split
// by kind, so the operation slice is partitioned into one create call
// and one update call and the per-item results are stitched back into
// the original order.
//
// HubSpot's batch responses do not echo input positions. Creates are
// matched back by email and updates by id; an operation the response
// never accounts for gets a not-found result rather than a silent
// success.
func (c *Client) BatchSubmit(ctx context.Context, ops []directory.Operation) ([]directory.Result, error) {
	results := make([]directory.Result, len(ops))

	var creates, updates []int
	for i, op := range ops {
		switch op.Kind {
		case directory.OpCreate:
			creates = append(creates, i)
		case directory.OpUpdate:
			updates = append(updates, i)
		default:
			results[i] = directory.Result{Err: errors.NewValidationError("kind", op.Kind, "unknown operation kind")}
		}
	}

	if len(creates) > 0 {
		if err := c.batchCreate(ctx, ops, creates, results); err != nil {
			return nil, err
		}
	}
	if len(updates) > 0 {
		if err := c.batchUpdate(ctx, ops, updates, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (c *Client) batchCreate(ctx context.Context, ops []directory.Operation, indexes []int, results []directory.Result) error {
	// Stamp every input with a staging id; the response echoes stored
	// properties, which is the only reliable way back to the operation.
	req := batchRequest{Inputs: make([]objectInput, 0, len(indexes))}
	pending := make(map[string]int, len(indexes))
	for _, i := range indexes {
		tempID := uuid.NewString()
		props := make(map[string]string, len(ops[i].Properties)+1)
		for name, value := range ops[i].Properties {
			props[name] = value
		}
		props[stagingProperty] = tempID
		pending[tempID] = i
		req.Inputs = append(req.Inputs, objectInput{Properties: props})
	}

	var resp batchResponse
	if err := c.http.PostJSON(ctx, c.objectsURL()+"/batch/create", req, &resp); err != nil {
		return err
	}

	for _, result := range resp.Results {
		i, ok := pending[result.Properties[stagingProperty]]
		if !ok {
			continue
		}
		results[i] = directory.Result{RemoteID: contacts.RemoteID(result.ID)}
		delete(pending, result.Properties[stagingProperty])
	}
	for _, i := range pending {
		results[i] = directory.Result{Err: unaccountedError(resp.Errors)}
	}
	return nil
}

// unaccountedError assigns an error to an operation the batch response
// never accounted for. HubSpot groups identical per-item failures into
// a single error entry, so with one entry the cause is unambiguous;
// anything else gets a generic failure rather than a fabricated success.
func unaccountedError(errs []batchError) error {
	switch len(errs) {
	case 0:
		return fmt.Errorf("operation missing from batch response: %w", errors.ErrNotFound)
	case 1:
		return mapBatchError(errs[0])
	default:
		return errors.NewAPIError("hubspot", 0,
			fmt.Sprintf("operation rejected (%d batch errors, first: %s)", len(errs), errs[0].Message))
	}
}

func (c *Client) batchUpdate(ctx context.Context, ops []directory.Operation, indexes []int, results []directory.Result) error {
	req := batchRequest{Inputs: make([]objectInput, 0, len(indexes))}
	for _, i := range indexes {
		req.Inputs = append(req.Inputs, objectInput{
			ID:         string(ops[i].RemoteID),
			Properties: ops[i].Properties,
		})
	}

	var resp batchResponse
	if err := c.http.PostJSON(ctx, c.objectsURL()+"/batch/update", req, &resp); err != nil {
		return err
	}

	pending := make(map[string]int, len(indexes))
	for _, i := range indexes {
		pending[string(ops[i].RemoteID)] = i
	}

	for _, result := range resp.Results {
		i, ok := pending[result.ID]
		if !ok {
			continue
		}
		results[i] = directory.Result{RemoteID: contacts.RemoteID(result.ID)}
		delete(pending, result.ID)
	}
	for _, be := range resp.Errors {
		for _, id := range be.Context["ids"] {
			i, ok := pending[id]
			if !ok {
				continue
			}
			results[i] = directory.Result{Err: mapBatchError(be)}
			delete(pending, id)
		}
	}
	for _, i := range pending {
		results[i] = directory.Result{Err: unaccountedError(resp.Errors)}
	}
	return nil
}

// mapBatchError lifts a per-item batch error onto the error taxonomy.
func mapBatchError(be batchError) error {
	switch be.Category {
	case "VALIDATION_ERROR":
		return errors.NewValidationError("", nil, be.Message)
	case "OBJECT_NOT_FOUND":
		return fmt.Errorf("%s: %w", be.Message, errors.ErrNotFound)
	case "RATE_LIMITS":
		return fmt.Errorf("%s: %w", be.Message, errors.ErrRateLimited)
	default:
		return errors.NewAPIError("hubspot", 0, fmt.Sprintf("%s: %s", be.Category, be.Message))
	}
}
