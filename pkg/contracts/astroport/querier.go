package astroport

import (
	"context"
	"encoding/json"

	"github.com/margined-protocol/isotonic-lend/pkg/contracts/base"
	"google.golang.org/grpc"
)

// QueryClient is the API for querying an astroport pair contract: simulate a swap and
// read the pool's current reserves. The oracle.AMM adapter uses these two calls for
// SpotPrice/EstimateSwapExactOut.
type QueryClient interface {
	QuerySimulation(ctx context.Context, contractAddress, denom, amount string, opts ...grpc.CallOption) (*SimulationResponse, error)
	QueryPool(ctx context.Context, contractAddress string, opts ...grpc.CallOption) (*PoolResponse, error)
	Close() error
}

type queryClient struct {
	baseQueryClient base.QueryClient
	cc              *grpc.ClientConn
}

var _ QueryClient = (*queryClient)(nil)

// NewQueryClient creates a new QueryClient over an existing gRPC connection.
func NewQueryClient(conn *grpc.ClientConn) QueryClient {
	return &queryClient{
		baseQueryClient: *base.NewQueryClient(conn),
		cc:              conn,
	}
}

// Close closes the gRPC connection to the server.
func (q *queryClient) Close() error {
	return q.cc.Close()
}

func (q *queryClient) QuerySimulation(ctx context.Context, contractAddress, denom, amount string, opts ...grpc.CallOption) (*SimulationResponse, error) {
	rawQueryData, err := json.Marshal(map[string]any{
		"simulation": map[string]any{
			"offer_asset": map[string]any{
				"info": map[string]any{
					"native_token": map[string]any{
						"denom": denom,
					},
				},
				"amount": amount,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	rawResponseData, err := q.baseQueryClient.QuerySmartContractState(ctx, contractAddress, rawQueryData, opts...)
	if err != nil {
		return nil, err
	}

	var simulationResponse SimulationResponse
	if err := json.Unmarshal(rawResponseData, &simulationResponse); err != nil {
		return nil, err
	}

	return &simulationResponse, nil
}

func (q *queryClient) QueryPool(ctx context.Context, contractAddress string, opts ...grpc.CallOption) (*PoolResponse, error) {
	rawQueryData, err := json.Marshal(map[string]any{"pool": map[string]any{}})
	if err != nil {
		return nil, err
	}

	rawResponseData, err := q.baseQueryClient.QuerySmartContractState(ctx, contractAddress, rawQueryData, opts...)
	if err != nil {
		return nil, err
	}

	var poolResponse PoolResponse
	if err := json.Unmarshal(rawResponseData, &poolResponse); err != nil {
		return nil, err
	}

	return &poolResponse, nil
}
