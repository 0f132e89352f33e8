package service

import (
	"gorm.io/gorm"

	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
)

type PostReceiveURLService interface {
	List(projectID int64) ([]*model.PostReceiveURL, error)
	Get(projectID, id int64) (*model.PostReceiveURL, error)
	Create(projectID int64, req *dto.CreatePostReceiveURLRequest) (*model.PostReceiveURL, error)
	Update(projectID, id int64, req *dto.UpdatePostReceiveURLRequest) (*model.PostReceiveURL, error)
	Toggle(projectID, id int64) (*model.PostReceiveURL, error)
	Delete(projectID, id int64) error
}

type postReceiveURLService struct {
	repos repository.RepositoryRepository
	urls  repository.PostReceiveURLRepository
}

func NewPostReceiveURLService(db *gorm.DB) PostReceiveURLService {
	return &postReceiveURLService{
		repos: repository.NewRepositoryRepository(db),
		urls:  repository.NewPostReceiveURLRepository(db),
	}
}

// find 项目没有代码库或回调不属于该代码库时返回未找到
func (s *postReceiveURLService) find(projectID, id int64) (*model.PostReceiveURL, error) {
	repo, err := s.repos.FindByProjectID(projectID)
	if err != nil {
		return nil, err
	}
	return s.urls.FindByRepositoryAndID(repo.ID, id)
}

func (s *postReceiveURLService) List(projectID int64) ([]*model.PostReceiveURL, error) {
	repo, err := s.repos.FindByProjectID(projectID)
	if err != nil {
		return nil, err
	}
	return s.urls.ListByRepository(repo.ID)
}

func (s *postReceiveURLService) Get(projectID, id int64) (*model.PostReceiveURL, error) {
	return s.find(projectID, id)
}

func (s *postReceiveURLService) Create(projectID int64, req *dto.CreatePostReceiveURLRequest) (*model.PostReceiveURL, error) {
	repo, err := s.repos.FindByProjectID(projectID)
	if err != nil {
		return nil, err
	}
	u := &model.PostReceiveURL{
		RepositoryID: repo.ID,
		Active:       constants.StatusEnabled,
		URL:          req.URL,
		Mode:         req.Mode,
	}
	if u.Mode == "" {
		u.Mode = constants.PostReceiveModeGithub
	}
	if err := s.urls.Create(u); err != nil {
		return nil, err
	}
	// 默认值为启用, 创建后再写入禁用状态
	if req.Active != nil && !*req.Active {
		u.Active = constants.StatusDisabled
		if err := s.urls.Update(u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *postReceiveURLService) Update(projectID, id int64, req *dto.UpdatePostReceiveURLRequest) (*model.PostReceiveURL, error) {
	u, err := s.find(projectID, id)
	if err != nil {
		return nil, err
	}
	if req.URL != nil {
		u.URL = *req.URL
	}
	if req.Mode != nil {
		u.Mode = *req.Mode
	}
	if err := s.urls.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *postReceiveURLService) Toggle(projectID, id int64) (*model.PostReceiveURL, error) {
	u, err := s.find(projectID, id)
	if err != nil {
		return nil, err
	}
	u.Toggle()
	if err := s.urls.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *postReceiveURLService) Delete(projectID, id int64) error {
	u, err := s.find(projectID, id)
	if err != nil {
		return err
	}
	return s.urls.Delete(u.ID)
}
