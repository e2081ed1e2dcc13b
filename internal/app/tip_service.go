package app

import "kanguru-service/internal/domain"

// TipService serves the learning section.
type TipService struct {
	source TipSource
}

func NewTipService(source TipSource) *TipService {
	return &TipService{source: source}
}

func (s *TipService) Topics() []domain.TopicMeta {
	return s.source.Topics()
}

// Tips returns the tips of topic, or all tips for an empty topic.
func (s *TipService) Tips(topic domain.Topic) ([]domain.Tip, error) {
	if topic != "" && !topic.Valid() {
		return nil, domain.ErrInvalidTopic
	}
	tips := s.source.Tips(topic)
	if tips == nil {
		tips = []domain.Tip{}
	}
	return tips, nil
}
