package pipeline

import (
	"context"

	"github.com/rushteam/premiumkit/core"
	"github.com/rushteam/premiumkit/feature"
	"github.com/rushteam/premiumkit/model"
	"github.com/rushteam/premiumkit/registry"
)

type validateNode struct{ v *Validator }

func (n validateNode) Kind() Kind { return KindValidate }

func (n validateNode) Process(_ context.Context, st *State) error {
	age, err := n.v.Validate(st.Input)
	if err != nil {
		return err
	}
	st.Age = age
	return nil
}

type normalizeNode struct{ n *feature.RiskNormalizer }

func (n normalizeNode) Kind() Kind { return KindNormalize }

func (n normalizeNode) Process(_ context.Context, st *State) error {
	history, _ := st.Input.GetString(core.FieldMedicalHistory)
	st.Risk = n.n.Normalize(history)
	return nil
}

type encodeNode struct{ e *feature.CategoricalEncoder }

func (n encodeNode) Kind() Kind { return KindEncode }

func (n encodeNode) Process(_ context.Context, st *State) error {
	st.Encoded = n.e.Encode(st.Input)
	return nil
}

type assembleNode struct{ a *feature.Assembler }

func (n assembleNode) Kind() Kind { return KindAssemble }

func (n assembleNode) Process(_ context.Context, st *State) error {
	rec, err := n.a.Assemble(st.Input, st.Encoded, st.Risk)
	if err != nil {
		return err
	}
	st.Record = rec
	return nil
}

type scaleNode struct{ s *feature.ScalingRouter }

func (n scaleNode) Kind() Kind { return KindScale }

func (n scaleNode) Process(_ context.Context, st *State) error {
	_, err := n.s.Scale(st.Age, st.Record)
	return err
}

type routeNode struct {
	reg    *registry.Registry
	router *model.Router
}

func (n routeNode) Kind() Kind { return KindRoute }

func (n routeNode) Process(_ context.Context, st *State) error {
	band, err := n.reg.Resolve(st.Age)
	if err != nil {
		return err
	}
	m, err := n.router.Route(st.Age)
	if err != nil {
		return err
	}
	st.Band = band.Name
	st.Model = m
	return nil
}

type reorderNode struct{ router *model.Router }

func (n reorderNode) Kind() Kind { return KindReorder }

func (n reorderNode) Process(_ context.Context, st *State) error {
	vec, err := n.router.Reorder(st.Record, st.Model)
	if err != nil {
		return err
	}
	st.Vector = vec
	return nil
}

type predictNode struct{}

func (predictNode) Kind() Kind { return KindPredict }

func (predictNode) Process(ctx context.Context, st *State) error {
	score, err := st.Model.Predict(ctx, st.Vector)
	if err != nil {
		return err
	}
	st.Score = score
	return nil
}
