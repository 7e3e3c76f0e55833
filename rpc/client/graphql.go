package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
)

// GraphQLRequestBody request body
type GraphQLRequestBody struct {
	Version string      `json:"jsonrpc"`
	Query   interface{} `json:"query"`
	ID      int         `json:"id"`
}

// GraphQLResponse graphql response envelope
type GraphQLResponse struct {
	Error  json.RawMessage `json:"errors,omitempty"`
	Result json.RawMessage `json:"data,omitempty"`
}

// GraphQLPostRequest graphql post request
func GraphQLPostRequest(url string, req *Request, result interface{}) error {
	return GraphQLPostRequestWithContext(context.Background(), url, req, result)
}

// GraphQLPostRequestWithContext graphql post request with context
func GraphQLPostRequestWithContext(ctx context.Context, url string, req *Request, result interface{}) error {
	reqBody := &GraphQLRequestBody{
		Version: "2.0",
		Query:   req.Params,
		ID:      req.ID,
	}
	resp, err := HTTPPostWithContext(ctx, url, reqBody, nil, req.Timeout)
	if err != nil {
		log.Trace("post graphql error", "url", url, "request", req, "err", err)
		return err
	}
	err = getGraphQLResult(result, resp)
	if err != nil {
		log.Trace("post graphql error", "url", url, "request", req, "err", err)
	}
	return err
}

func getGraphQLResult(result interface{}, resp *http.Response) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	const maxReadContentLength int64 = 1024 * 1024 * 10 // 10M
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadContentLength))
	if err != nil {
		return fmt.Errorf("read body error: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("wrong response status %v. message: %v", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return fmt.Errorf("empty response body")
	}

	var jsonResp GraphQLResponse
	if err := json.Unmarshal(body, &jsonResp); err != nil {
		return fmt.Errorf("unmarshal body error, body is \"%v\" err=\"%w\"", string(body), err)
	}
	if jsonResp.Error != nil {
		return fmt.Errorf("return error: %v", string(jsonResp.Error))
	}
	if err := json.Unmarshal(jsonResp.Result, &result); err != nil {
		return fmt.Errorf("unmarshal result error: %w", err)
	}
	return nil
}
