package request

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/model"
	"github.com/yumyai/protlit/pkg/predict"
	"github.com/yumyai/protlit/pkg/rcsb"
)

// Mutation prediction form: site like "A123", mutation like "A123C".
type MutationRequest struct {
	PDBID    string          `json:"pdb_id"`
	Chain    string          `json:"chain"`
	ResNum   int             `json:"resnum"`
	Site     string          `json:"site"`
	Mutation string          `json:"mutation"`
	Service  predict.Service `json:"service"`
}

// BLAST submission: either a chain of a stored entry or a raw sequence.
type BlastSubmitRequest struct {
	PDBID    string `json:"pdb_id"`
	Chain    string `json:"chain"`
	Sequence string `json:"sequence"`
}

func (b BlastSubmitRequest) FromStructure() bool {
	return b.PDBID != ""
}

type ConservationRequest struct {
	Alignment string `json:"alignment"`
}

// AnalyzeFromForm reads the analysis form. Validation happens in the model.
func AnalyzeFromForm(r *http.Request) (model.AnalyzeRequest, error) {
	if err := r.ParseForm(); err != nil {
		return model.AnalyzeRequest{}, errors.Wrap(err, "parse form")
	}
	return model.AnalyzeRequest{
		InputType: model.InputType(strings.ToLower(r.PostFormValue("input_type"))),
		PDBID:     r.PostFormValue("pdb_id"),
		Sequence:  r.PostFormValue("sequence"),
		Question:  r.PostFormValue("question"),
	}, nil
}

func MutationFromForm(r *http.Request) (MutationRequest, error) {
	if err := r.ParseForm(); err != nil {
		return MutationRequest{}, errors.Wrap(err, "parse form")
	}

	id, err := rcsb.NormalizeID(r.PostFormValue("pdb_id"))
	if err != nil {
		return MutationRequest{}, err
	}

	site := strings.TrimSpace(r.PostFormValue("site"))
	chain, resnum, err := predict.ParseSite(site)
	if err != nil {
		return MutationRequest{}, err
	}

	mutation := strings.ToUpper(strings.TrimSpace(r.PostFormValue("mutation")))
	if mutation == "" {
		return MutationRequest{}, errors.New("mutation is required")
	}

	service, err := predict.ParseService(r.PostFormValue("service"))
	if err != nil {
		return MutationRequest{}, err
	}

	return MutationRequest{
		PDBID:    id,
		Chain:    chain,
		ResNum:   resnum,
		Site:     site,
		Mutation: mutation,
		Service:  service,
	}, nil
}

func BlastSubmitFromForm(r *http.Request) (BlastSubmitRequest, error) {
	if err := r.ParseForm(); err != nil {
		return BlastSubmitRequest{}, errors.Wrap(err, "parse form")
	}

	req := BlastSubmitRequest{
		Chain:    strings.TrimSpace(r.PostFormValue("chain")),
		Sequence: r.PostFormValue("sequence"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("pdb_id")); raw != "" {
		id, err := rcsb.NormalizeID(raw)
		if err != nil {
			return req, err
		}
		req.PDBID = id
		if req.Chain == "" {
			return req, errors.New("chain is required with pdb_id")
		}
		return req, nil
	}
	if strings.TrimSpace(req.Sequence) == "" {
		return req, errors.New("either pdb_id and chain or a sequence is required")
	}
	return req, nil
}
