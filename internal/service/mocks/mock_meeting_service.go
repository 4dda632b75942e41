package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"meetapi/internal/model"
	"meetapi/internal/repository"
	"meetapi/internal/service"
)

type MockMeetingService struct {
	mock.Mock
}

func (m *MockMeetingService) Create(ctx context.Context, userID string, in service.CreateMeetingInput) (*model.Meeting, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingService) GetByID(ctx context.Context, meetingID, userID string) (*model.Meeting, error) {
	args := m.Called(ctx, meetingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingService) Update(ctx context.Context, meetingID, userID string, in service.UpdateMeetingInput) (*model.Meeting, error) {
	args := m.Called(ctx, meetingID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingService) Cancel(ctx context.Context, meetingID, userID string) error {
	args := m.Called(ctx, meetingID, userID)
	return args.Error(0)
}

func (m *MockMeetingService) Delete(ctx context.Context, meetingID, userID string) error {
	args := m.Called(ctx, meetingID, userID)
	return args.Error(0)
}

func (m *MockMeetingService) List(ctx context.Context, userID string, f repository.MeetingFilter) (*repository.PageResult[model.Meeting], error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Meeting]), args.Error(1)
}
