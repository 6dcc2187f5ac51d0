package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/types"
)

type fakeCompute struct {
	instances map[string]gateway.Instance
	pages     [][]gateway.Instance
	listErr   error
}

func (c fakeCompute) DescribeInstance(ctx context.Context, instanceID string) (gateway.Instance, error) {
	inst, ok := c.instances[instanceID]
	if !ok {
		return gateway.Instance{}, fmt.Errorf("instance %s: %w", instanceID, gateway.ErrNotFound)
	}
	return inst, nil
}

func (c fakeCompute) ListInstances(ctx context.Context, pageToken string) ([]gateway.Instance, string, error) {
	if c.listErr != nil {
		return nil, "", c.listErr
	}

	idx := pageIndex(pageToken)
	return c.pages[idx], nextToken(idx, len(c.pages)), nil
}

func webInstance() gateway.Instance {
	return gateway.Instance{
		ID:        "i-0abc",
		Name:      "web-1",
		State:     "running",
		Type:      "t3.micro",
		PublicIP:  "54.1.2.3",
		PrivateIP: "10.0.0.5",
		AZ:        "us-east-1a",
		Tags:      map[string]string{"env": "prod"},
	}
}

func TestEC2InstanceExists(t *testing.T) {
	clients := fakeClients{compute: fakeCompute{instances: map[string]gateway.Instance{"i-0abc": webInstance()}}}
	req := Request{
		Check:  checkFor(types.ServiceEC2, "instance_exists", types.OpEquals),
		Params: map[string]any{"instance_id": "i-0abc"},
	}

	result, err := ec2InstanceExists(context.Background(), req, clients)

	require.NoError(t, err)
	assert.Equal(t, types.StatusPass, result.Status)
	assert.Equal(t, "54.1.2.3", result.Data["publicIp"])
	assert.Equal(t, "running", result.Data["state"])
}

func TestEC2InstanceExistsNotFound(t *testing.T) {
	clients := fakeClients{compute: fakeCompute{}}
	req := Request{
		Check:  checkFor(types.ServiceEC2, "instance_exists", types.OpEquals),
		Params: map[string]any{"instance_id": "i-missing"},
	}

	result, err := ec2InstanceExists(context.Background(), req, clients)

	require.NoError(t, err, "a missing resource is a FAIL result, not an error")
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Equal(t, "instance i-missing exists", result.Expected)
	assert.Equal(t, "instance not found", result.Observed)
}

func TestEC2InstanceExistsMissingParam(t *testing.T) {
	req := Request{
		Check:  checkFor(types.ServiceEC2, "instance_exists", types.OpEquals),
		Params: map[string]any{},
	}

	result, err := ec2InstanceExists(context.Background(), req, fakeClients{})

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Equal(t, "instance_id is required", result.Reason)
}

func TestEC2InstanceState(t *testing.T) {
	clients := fakeClients{compute: fakeCompute{instances: map[string]gateway.Instance{"i-0abc": webInstance()}}}

	t.Run("matching state passes", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_state", types.OpEquals),
			Params: map[string]any{"instance_id": "i-0abc", "expected": "running"},
		}

		result, err := ec2InstanceState(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status)
	})

	t.Run("mismatched state fails", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_state", types.OpEquals),
			Params: map[string]any{"instance_id": "i-0abc", "expected": "stopped"},
		}

		result, err := ec2InstanceState(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusFail, result.Status)
	})

	t.Run("IN_LIST operator", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_state", types.OpInList),
			Params: map[string]any{"instance_id": "i-0abc", "expected": []any{"running", "pending"}},
		}

		result, err := ec2InstanceState(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status)
	})
}

func TestEC2InstanceCount(t *testing.T) {
	stopped := webInstance()
	stopped.ID = "i-1def"
	stopped.Name = "batch-1"
	stopped.State = "stopped"

	other := webInstance()
	other.ID = "i-2ghi"
	other.Name = "web-2"

	clients := fakeClients{compute: fakeCompute{pages: [][]gateway.Instance{
		{webInstance(), stopped},
		{other},
	}}}

	t.Run("counts across pages with state filter", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_count", types.OpEquals),
			Params: map[string]any{"state": "running", "expected": 2},
		}

		result, err := ec2InstanceCount(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
		assert.Equal(t, 2, result.Data["count"])
	})

	t.Run("name prefix filter", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_count", types.OpGreaterThanOrEquals),
			Params: map[string]any{"name_prefix": "web-", "expected": 2},
		}

		result, err := ec2InstanceCount(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	})

	t.Run("tag filter", func(t *testing.T) {
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_count", types.OpEquals),
			Params: map[string]any{"tag_key": "env", "tag_value": "staging", "expected": 0},
		}

		result, err := ec2InstanceCount(context.Background(), req, clients)

		require.NoError(t, err)
		assert.Equal(t, types.StatusPass, result.Status, result.Reason)
	})

	t.Run("list error is an API failure", func(t *testing.T) {
		broken := fakeClients{compute: fakeCompute{listErr: fmt.Errorf("throttled")}}
		req := Request{
			Check:  checkFor(types.ServiceEC2, "instance_count", types.OpEquals),
			Params: map[string]any{"expected": 1},
		}

		result, err := ec2InstanceCount(context.Background(), req, broken)

		require.NoError(t, err)
		assert.Equal(t, types.StatusFail, result.Status)
		assert.Equal(t, "Successful EC2 API call", result.Expected)
	})
}

func TestEC2ComputeUnavailable(t *testing.T) {
	req := Request{
		Check:  checkFor(types.ServiceEC2, "instance_exists", types.OpEquals),
		Params: map[string]any{"instance_id": "i-0abc"},
	}

	result, err := ec2InstanceExists(context.Background(), req, fakeClients{})

	require.NoError(t, err)
	assert.Equal(t, types.StatusFail, result.Status)
	assert.Equal(t, "Successful EC2 API call", result.Expected)
}
