// Package httpclient is the outbound HTTP client used to talk to remote
// services such as the speech backend.
//
// Failures come back as *errors.AppError values: transport failures,
// throttling (429) and 5xx responses are retryable, other non-2xx
// statuses are not, so callers can wrap Do in resilience.Retry with
// errors.IsRetryable as the predicate.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:    "speech",
//	    BaseURL: "https://example.cognitiveservices.azure.com",
//	    Auth:    httpclient.APIKeyAuthHeader(key, "Ocp-Apim-Subscription-Key"),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/speechtotext/transcriptions:transcribe",
//	    Body:   &httpclient.MultipartBody{...},
//	})
package httpclient
