package dataapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xampe11/nft-marketplace-project/internal/adapter"
	"github.com/xampe11/nft-marketplace-project/internal/domain"
	"github.com/xampe11/nft-marketplace-project/internal/logger"
	"github.com/xampe11/nft-marketplace-project/internal/providers/dataapi"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type recordedRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// newTestServer answers every request with the given status and body and records the requests
func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req recordedRequest
		require.NoError(t, json.Unmarshal(body, &req))
		requests = append(requests, req)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(t *testing.T, url string) dataapi.Client {
	httpClient := adapter.NewHTTPClientWithRetry(time.Second, adapter.RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsedTime:  20 * time.Millisecond,
	})
	client, err := dataapi.NewClient(dataapi.Config{URL: url, Timeout: time.Second}, httpClient, adapter.NewJSON())
	require.NoError(t, err)
	return client
}

func TestClient_NFTByTokenID(t *testing.T) {
	tests := []struct {
		name     string
		response string
		validate func(*testing.T, *dataapi.NFT)
	}{
		{
			name:     "record present",
			response: `{"data":{"nfts":[{"id":"n1","tokenId":"7","owner":"0xa1","creator":"0xa1","price":1.5,"currency":"ETH","isListed":true}]}}`,
			validate: func(t *testing.T, nft *dataapi.NFT) {
				require.NotNil(t, nft)
				assert.Equal(t, "n1", nft.ID)
				assert.Equal(t, "0xa1", nft.Owner)
				assert.Equal(t, "1.5", nft.Price.String())
				assert.True(t, nft.IsListed)
			},
		},
		{
			name:     "record absent",
			response: `{"data":{"nfts":[]}}`,
			validate: func(t *testing.T, nft *dataapi.NFT) {
				assert.Nil(t, nft)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newTestServer(t, http.StatusOK, tt.response)
			client := newTestClient(t, server.URL)

			nft, err := client.NFTByTokenID(context.Background(), "7")
			require.NoError(t, err)
			tt.validate(t, nft)

			require.Len(t, *requests, 1)
			assert.Equal(t, "GetNFTByTokenId", (*requests)[0].OperationName)
			assert.Equal(t, "7", (*requests)[0].Variables["tokenId"])
		})
	}
}

func TestClient_UpdateNFT_SendsOnlySetFields(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"data":{"updateNFT":{"id":"n1","tokenId":"7","owner":"0xa1","price":2.5,"isListed":true}}}`)
	client := newTestClient(t, server.URL)

	nft, err := client.UpdateNFT(context.Background(), dataapi.UpdateNFTInput{
		ID:       "n1",
		Price:    domain.StringPtr("2.5"),
		IsListed: func() *bool { b := true; return &b }(),
	})
	require.NoError(t, err)
	assert.Equal(t, "n1", nft.ID)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "UpdateNFT", req.OperationName)
	assert.Equal(t, map[string]interface{}{"id": "n1", "price": 2.5, "isListed": true}, req.Variables)
}

func TestClient_RecordTransaction(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"data":{"recordTransaction":{"id":"tx1"}}}`)
	client := newTestClient(t, server.URL)

	id, err := client.RecordTransaction(context.Background(), dataapi.TransactionInput{
		NFTID:           "n1",
		From:            "0xa1",
		To:              "0xb2",
		Price:           domain.StringPtr("1.0"),
		Currency:        domain.StringPtr(domain.NATIVE_CURRENCY),
		TransactionType: domain.TransactionTypeSale,
		TransactionHash: "0xabc",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx1", id)

	req := (*requests)[0]
	assert.Equal(t, "RecordTransaction", req.OperationName)
	assert.Equal(t, "SALE", req.Variables["transactionType"])
	assert.Equal(t, float64(1), req.Variables["price"])
	assert.Equal(t, "ETH", req.Variables["currency"])
}

func TestClient_CreateNFT(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{"data":{"createNFT":{"id":"n9","tokenId":"9","owner":"0xa1","creator":"0xa1","isListed":false}}}`)
	client := newTestClient(t, server.URL)

	nft, err := client.CreateNFT(context.Background(), dataapi.CreateNFTInput{
		TokenID:  "9",
		Name:     "NFT #9",
		Owner:    "0xa1",
		Creator:  "0xa1",
		Metadata: map[string]interface{}{"name": "NFT #9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "n9", nft.ID)

	req := (*requests)[0]
	assert.Equal(t, "CreateNFT", req.OperationName)
	assert.Equal(t, map[string]interface{}{"name": "NFT #9"}, req.Variables["metadata"])
	assert.Equal(t, "", req.Variables["description"])
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		response   string
		statusCode int
		messages   []string
	}{
		{
			name:     "graphql errors",
			status:   http.StatusOK,
			response: `{"data":null,"errors":[{"message":"NFT not found","path":["updateNFT"],"extensions":{"code":"NOT_FOUND"}}]}`,
			messages: []string{"NFT not found"},
		},
		{
			name:       "validation error body",
			status:     http.StatusBadRequest,
			response:   `{"errors":[{"message":"Variable \"$id\" of required type \"ID!\" was not provided."}]}`,
			statusCode: http.StatusBadRequest,
			messages:   []string{`Variable "$id" of required type "ID!" was not provided.`},
		},
		{
			name:       "server error",
			status:     http.StatusBadGateway,
			response:   `bad gateway`,
			statusCode: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.response)
			client := newTestClient(t, server.URL)

			_, err := client.UpdateNFT(context.Background(), dataapi.UpdateNFTInput{ID: "n1"})
			require.Error(t, err)

			var apiErr *dataapi.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "UpdateNFT", apiErr.Operation)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)

			messages := make([]string, 0, len(apiErr.Errors))
			for _, e := range apiErr.Errors {
				messages = append(messages, e.Message)
			}
			if len(tt.messages) == 0 {
				assert.Empty(t, messages)
			} else {
				assert.Equal(t, tt.messages, messages)
			}
			assert.NotEmpty(t, apiErr.Fields())
		})
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"data":{"nfts":[]}}`)
	client, err := dataapi.NewClient(dataapi.Config{URL: server.URL, RequestsPerSecond: 0.001}, adapter.NewHTTPClient(time.Second), adapter.NewJSON())
	require.NoError(t, err)

	// First request consumes the burst
	_, err = client.NFTByTokenID(context.Background(), "1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.NFTByTokenID(ctx, "1")
	assert.Error(t, err)
}
