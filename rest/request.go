package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

// EncodeBody returns the encoded request body and its content type.
// Requests with files are sent as multipart forms, with the JSON body in the payload_json field.
// The body is read into memory once, so it can be resent on retries.
// It's also used for interaction responses with files, which are sent as an HTTP response body.
func EncodeBody(body interface{}, files []discord.File) ([]byte, string, error) {
	if len(files) == 0 {
		if body == nil {
			return nil, "", nil
		}

		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshaling json")
		}
		return b, "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshaling json")
		}

		if err := w.WriteField("payload_json", string(b)); err != nil {
			return nil, "", errors.Wrap(err, "writing payload_json")
		}
	}

	for i, f := range files {
		if f.Reader == nil {
			return nil, "", errors.Errorf("file %d (%q) has no reader", i, f.Name)
		}

		part, err := w.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Filename())
		if err != nil {
			return nil, "", errors.Wrapf(err, "creating form file %d", i)
		}

		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", errors.Wrapf(err, "reading file %q", f.Name)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart writer")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// AttachmentsFor returns the attachment metadata for a list of files to be uploaded.
// Existing attachments are kept by appending them after this.
func AttachmentsFor(files []discord.File) []discord.PartialAttachment {
	if len(files) == 0 {
		return nil
	}

	out := make([]discord.PartialAttachment, len(files))
	for i, f := range files {
		out[i] = discord.PartialAttachment{
			ID:          discord.Snowflake(i),
			Filename:    f.Filename(),
			Description: f.Description,
		}
	}
	return out
}
